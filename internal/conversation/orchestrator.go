package conversation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atencion-digital/tramites-bot/internal/directory"
	"github.com/atencion-digital/tramites-bot/internal/observability/metrics"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

// Orchestrator submits a completed form to the Directory Service and settles
// the session's terminal state.
type Orchestrator struct {
	directory DirectoryAPI
	logger    *logging.Logger
	metrics   *metrics.ActionMetrics
	tracer    trace.Tracer
}

// NewOrchestrator constructs an orchestrator.
func NewOrchestrator(dir DirectoryAPI, logger *logging.Logger, m *metrics.ActionMetrics) *Orchestrator {
	if dir == nil {
		panic("conversation: directory client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		directory: dir,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("tramites.internal.conversation"),
	}
}

// Book submits the turno. It is only callable on a ready session; a violated
// precondition means the slot-filling bookkeeping is defective, so it is
// logged as an internal error and never reaches the Directory Service. On a
// rejection or transient failure the session stays ready so the user can
// retry or pick another time.
func (o *Orchestrator) Book(ctx context.Context, s *Session) Outcome {
	ctx, span := o.tracer.Start(ctx, "conversation.book")
	defer span.End()
	span.SetAttributes(attribute.String("tramites.session_id", s.ID))

	if s.Status == StatusBooked {
		return rejected(promptSessionDone)
	}
	if s.Identity == IdentityUnknown || s.DNI == "" || s.ProcedureID == "" || s.ScheduledAt == "" || len(s.PendingSlots()) > 0 {
		o.logger.Error("booking precondition violated",
			"session_id", s.ID,
			"status", s.Status,
			"identity", s.Identity,
			"pending", s.PendingSlots(),
		)
		o.metrics.ObserveBooking("inconsistent")
		return rejected("Algo salió mal con tu solicitud. Escribí \"turno\" para empezar de nuevo.")
	}

	booking, err := o.directory.CreateBooking(ctx, directory.CreateBookingRequest{
		ProcedureID: s.ProcedureID,
		CitizenDNI:  s.DNI,
		ScheduledAt: s.ScheduledAt,
	})

	var rejectedErr *directory.RejectedError
	switch {
	case err == nil:
		s.BookingID = booking.ID
		s.Status = StatusBooked
		s.refresh()
		o.logger.Info("booking confirmed", "session_id", s.ID, "booking_id", booking.ID)
		o.metrics.ObserveBooking("booked")
		return accepted(fmt.Sprintf("¡Tu turno quedó confirmado! Número de turno: %s.", booking.ID))
	case errors.As(err, &rejectedErr):
		span.RecordError(err)
		o.logger.Info("booking rejected", "session_id", s.ID, "reason", rejectedErr.Reason)
		o.metrics.ObserveBooking("rejected")
		return rejected(rejectedErr.Reason)
	default:
		span.RecordError(err)
		o.logger.Warn("booking submission failed", "session_id", s.ID, "error", err)
		o.metrics.ObserveBooking("transient")
		return rejected(promptRetryLater)
	}
}
