package citizens

import "errors"

var (
	// ErrInvalidDNI is returned when the DNI is not 7 or 8 digits
	ErrInvalidDNI = errors.New("dni must be 7 or 8 digits")

	// ErrInvalidName is returned when first or last name is missing
	ErrInvalidName = errors.New("first_name and last_name are required")

	// ErrDuplicateDNI is returned when the DNI is already registered
	ErrDuplicateDNI = errors.New("DNI already registered")

	// ErrCitizenNotFound is returned when no citizen matches the DNI
	ErrCitizenNotFound = errors.New("citizen not found")
)
