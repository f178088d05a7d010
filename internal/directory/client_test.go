package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atencion-digital/tramites-bot/internal/observability/metrics"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m := metrics.NewDirectoryMetrics(prometheus.NewRegistry())
	client := NewClient(srv.URL, "test-key", 2*time.Second, logging.New("error"), m)
	return client, srv
}

func TestLookupCitizenFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/citizens/30111222", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Citizen{DNI: "30111222", FirstName: "Ana", LastName: "Paz", Email: "ana@example.com"})
	}))

	citizen, err := client.LookupCitizen(context.Background(), "30111222")
	require.NoError(t, err)
	assert.Equal(t, "Ana", citizen.FirstName)
	assert.Equal(t, "ana@example.com", citizen.Email)
}

func TestLookupCitizenNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Citizen not found"}`, http.StatusNotFound)
	}))

	_, err := client.LookupCitizen(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupCitizenServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.LookupCitizen(context.Background(), "30111222")
	assert.ErrorIs(t, err, ErrTransient)
}

func TestLookupCitizenMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := client.LookupCitizen(context.Background(), "30111222")
	assert.ErrorIs(t, err, ErrTransient)
}

func TestLookupCitizenConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	m := metrics.NewDirectoryMetrics(prometheus.NewRegistry())
	client := NewClient(srv.URL, "", time.Second, logging.New("error"), m)

	_, err := client.LookupCitizen(context.Background(), "30111222")
	assert.True(t, IsTransient(err), "connection refusal should classify transient, got %v", err)
}

func TestCreateCitizenConflict(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"DNI already registered"}`, http.StatusConflict)
	}))

	_, err := client.CreateCitizen(context.Background(), CreateCitizenRequest{DNI: "30111222"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateCitizenCreated(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateCitizenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Juan", req.FirstName)
		assert.Equal(t, "Perez Gomez", req.LastName)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Citizen{DNI: req.DNI, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email})
	}))

	citizen, err := client.CreateCitizen(context.Background(), CreateCitizenRequest{
		DNI:       "99999999",
		FirstName: "Juan",
		LastName:  "Perez Gomez",
		Email:     "juan@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "99999999", citizen.DNI)
}

func TestListDepartments(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/departments", r.URL.Path)
		json.NewEncoder(w).Encode([]Department{{ID: "42", Name: "Registro Civil"}})
	}))

	departments, err := client.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "Registro Civil", departments[0].Name)
}

func TestListProcedures(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/departments/42/procedures", r.URL.Path)
		json.NewEncoder(w).Encode([]Procedure{{ID: "p1", Name: "Renovacion DNI"}})
	}))

	procedures, err := client.ListProcedures(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, procedures, 1)
	assert.Equal(t, "p1", procedures[0].ID)
}

func TestCreateBookingSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.ProcedureID)
		assert.Equal(t, "30111222", req.CitizenDNI)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Booking{ID: "t-77", ProcedureID: req.ProcedureID, CitizenDNI: req.CitizenDNI, ScheduledAt: req.ScheduledAt, Status: "pendiente"})
	}))

	booking, err := client.CreateBooking(context.Background(), CreateBookingRequest{
		ProcedureID: "p1",
		CitizenDNI:  "30111222",
		ScheduledAt: "2025-12-01T09:00:00.000Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "t-77", booking.ID)
}

func TestCreateBookingRejectedCarriesReason(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "El horario ya esta ocupado"})
	}))

	_, err := client.CreateBooking(context.Background(), CreateBookingRequest{ProcedureID: "p1", CitizenDNI: "30111222", ScheduledAt: "2025-12-01T09:00:00.000Z"})
	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "El horario ya esta ocupado", rejected.Reason)
}

func TestCreateBookingTimeoutIsTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	client.httpClient.Timeout = 50 * time.Millisecond

	_, err := client.CreateBooking(context.Background(), CreateBookingRequest{ProcedureID: "p1", CitizenDNI: "30111222", ScheduledAt: "2025-12-01T09:00:00.000Z"})
	assert.True(t, IsTransient(err), "timeout should classify transient, got %v", err)
}
