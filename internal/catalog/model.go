package catalog

// Department is an organizational unit that owns procedures.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Procedure is a bookable administrative service offered by a department.
type Procedure struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
}
