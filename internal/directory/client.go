package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atencion-digital/tramites-bot/internal/observability/metrics"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// Client is a typed HTTP client for the Directory Service REST API. Every
// call is bounded by a per-call timeout and classified into the package's
// error taxonomy; the client never retries on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.Logger
	metrics    *metrics.DirectoryMetrics
}

// NewClient creates a Directory Service client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logging.Logger, m *metrics.DirectoryMetrics) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		logger:  logger,
		metrics: m,
	}
}

// LookupCitizen fetches a citizen by DNI. A miss is ErrNotFound, which the
// booking flow treats as "needs registration", not as a failure.
func (c *Client) LookupCitizen(ctx context.Context, dni string) (*Citizen, error) {
	op := "lookup_citizen"
	status, body, err := c.do(ctx, op, http.MethodGet, "/citizens/"+url.PathEscape(dni), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status == http.StatusOK:
		var citizen Citizen
		if err := json.Unmarshal(body, &citizen); err != nil {
			c.warnTransient(op)
			return nil, fmt.Errorf("%w: decode citizen: %v", ErrTransient, err)
		}
		return &citizen, nil
	default:
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: lookup citizen: status %d", ErrTransient, status)
	}
}

// CreateCitizen registers a citizen. A duplicate DNI is ErrConflict; callers
// treat that as success-equivalent since the record exists either way.
func (c *Client) CreateCitizen(ctx context.Context, req CreateCitizenRequest) (*Citizen, error) {
	op := "create_citizen"
	status, body, err := c.do(ctx, op, http.MethodPost, "/citizens", req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var citizen Citizen
		if err := json.Unmarshal(body, &citizen); err != nil {
			c.warnTransient(op)
			return nil, fmt.Errorf("%w: decode citizen: %v", ErrTransient, err)
		}
		return &citizen, nil
	case status >= 400 && status < 500:
		return nil, fmt.Errorf("%w: dni %s", ErrConflict, req.DNI)
	default:
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: create citizen: status %d", ErrTransient, status)
	}
}

// ListDepartments returns the department reference data.
func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	op := "list_departments"
	status, body, err := c.do(ctx, op, http.MethodGet, "/departments", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: list departments: status %d", ErrTransient, status)
	}
	var departments []Department
	if err := json.Unmarshal(body, &departments); err != nil {
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: decode departments: %v", ErrTransient, err)
	}
	return departments, nil
}

// ListProcedures returns the procedures offered by one department.
func (c *Client) ListProcedures(ctx context.Context, departmentID string) ([]Procedure, error) {
	op := "list_procedures"
	path := "/departments/" + url.PathEscape(departmentID) + "/procedures"
	status, body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: list procedures: status %d", ErrTransient, status)
	}
	var procedures []Procedure
	if err := json.Unmarshal(body, &procedures); err != nil {
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: decode procedures: %v", ErrTransient, err)
	}
	return procedures, nil
}

// CreateBooking submits a turno. A 4xx refusal is returned as *RejectedError
// with the directory's reason; everything else non-2xx is transient.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	op := "create_booking"
	status, body, err := c.do(ctx, op, http.MethodPost, "/turnos", req)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var booking Booking
		if err := json.Unmarshal(body, &booking); err != nil {
			c.warnTransient(op)
			return nil, fmt.Errorf("%w: decode booking: %v", ErrTransient, err)
		}
		return &booking, nil
	case status >= 400 && status < 500:
		return nil, &RejectedError{Reason: decodeDetail(body, status)}
	default:
		c.warnTransient(op)
		return nil, fmt.Errorf("%w: create booking: status %d", ErrTransient, status)
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	start := time.Now()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("directory: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("directory: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("directory call failed", "operation", op, "error", err)
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrTransient, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.warnTransient(op)
		return 0, nil, fmt.Errorf("%w: %s: read response: %v", ErrTransient, op, err)
	}

	c.logger.Debug("directory call",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.metrics.ObserveCall(op, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())
	return resp.StatusCode, body, nil
}

func (c *Client) warnTransient(op string) {
	c.logger.Warn("directory call transient failure", "operation", op)
}

func decodeDetail(body []byte, status int) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		return payload.Detail
	}
	return fmt.Sprintf("solicitud rechazada (status %d)", status)
}
