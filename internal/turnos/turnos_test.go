package turnos

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

func newTurnosRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewHandler(NewPostgresRepository(mock), logging.Default())
	r := chi.NewRouter()
	r.Post("/turnos", h.Create)
	r.Get("/turnos", h.List)
	r.Get("/turnos/{id}", h.GetByID)
	r.Put("/turnos/{id}/cancelar", h.Cancel)
	return r, mock
}

func expectCitizenAndProcedure(mock pgxmock.PgxPoolIface, dni, citizenID, procedureID string) {
	mock.ExpectQuery("SELECT id FROM citizens").
		WithArgs(dni).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(citizenID))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(procedureID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
}

func TestCreateTurno(t *testing.T) {
	router, mock := newTurnosRouter(t)

	scheduledAt := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	expectCitizenAndProcedure(mock, "30111222", "c-1", "p1")
	mock.ExpectQuery("INSERT INTO turnos").
		WithArgs(pgxmock.AnyArg(), "c-1", "p1", scheduledAt, StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	body, _ := json.Marshal(CreateTurnoRequest{
		ProcedureID: "p1",
		CitizenDNI:  "30111222",
		ScheduledAt: scheduledAt,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/turnos", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	var turno Turno
	require.NoError(t, json.NewDecoder(w.Body).Decode(&turno))
	assert.Equal(t, StatusConfirmed, turno.Status)
	assert.Equal(t, "30111222", turno.CitizenDNI)
	assert.True(t, turno.ScheduledAt.Equal(scheduledAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTurnoAcceptsWireTimestamp(t *testing.T) {
	router, mock := newTurnosRouter(t)

	scheduledAt := time.Date(2025, 11, 1, 10, 30, 0, 0, time.UTC)
	expectCitizenAndProcedure(mock, "30111222", "c-1", "p1")
	mock.ExpectQuery("INSERT INTO turnos").
		WithArgs(pgxmock.AnyArg(), "c-1", "p1", scheduledAt, StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	// The action layer sends millisecond-precision UTC timestamps.
	body := []byte(`{"procedure_id":"p1","citizen_dni":"30111222","scheduled_at":"2025-11-01T10:30:00.000Z"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/turnos", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTurnoUnknownCitizen(t *testing.T) {
	router, mock := newTurnosRouter(t)

	mock.ExpectQuery("SELECT id FROM citizens").
		WithArgs("99999999").
		WillReturnError(pgx.ErrNoRows)

	body, _ := json.Marshal(CreateTurnoRequest{
		ProcedureID: "p1",
		CitizenDNI:  "99999999",
		ScheduledAt: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/turnos", bytes.NewReader(body)))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Citizen not found", resp["detail"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTurnoSlotTaken(t *testing.T) {
	router, mock := newTurnosRouter(t)

	scheduledAt := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	expectCitizenAndProcedure(mock, "30111222", "c-1", "p1")
	mock.ExpectQuery("INSERT INTO turnos").
		WithArgs(pgxmock.AnyArg(), "c-1", "p1", scheduledAt, StatusConfirmed).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	body, _ := json.Marshal(CreateTurnoRequest{
		ProcedureID: "p1",
		CitizenDNI:  "30111222",
		ScheduledAt: scheduledAt,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/turnos", bytes.NewReader(body)))

	require.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp["detail"], "ocupado")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTurnoMissingFields(t *testing.T) {
	router, mock := newTurnosRouter(t)

	body, _ := json.Marshal(CreateTurnoRequest{CitizenDNI: "30111222"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/turnos", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTurnoIdempotent(t *testing.T) {
	router, mock := newTurnosRouter(t)

	now := time.Now().UTC()
	rowValues := func() *pgxmock.Rows {
		return pgxmock.NewRows([]string{
			"id", "citizen_id", "dni", "procedure_id", "scheduled_at", "status", "created_at",
		}).AddRow("t-1", "c-1", "30111222", "p1", now.Add(24*time.Hour), StatusCancelled, now)
	}

	mock.ExpectQuery("UPDATE turnos").WithArgs("t-1", StatusCancelled).WillReturnRows(rowValues())
	mock.ExpectQuery("UPDATE turnos").WithArgs("t-1", StatusCancelled).WillReturnRows(rowValues())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/turnos/t-1/cancelar", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var turno Turno
		require.NoError(t, json.NewDecoder(w.Body).Decode(&turno))
		assert.Equal(t, StatusCancelled, turno.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTurnoNotFound(t *testing.T) {
	router, mock := newTurnosRouter(t)

	mock.ExpectQuery("UPDATE turnos").
		WithArgs("t-404", StatusCancelled).
		WillReturnError(pgx.ErrNoRows)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/turnos/t-404/cancelar", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTurnosEmpty(t *testing.T) {
	router, mock := newTurnosRouter(t)

	mock.ExpectQuery("SELECT t.id, t.citizen_id").
		WithArgs(0, 100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "citizen_id", "dni", "procedure_id", "scheduled_at", "status", "created_at",
		}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/turnos", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
