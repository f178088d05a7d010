package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStartsCollecting(t *testing.T) {
	s := NewSession("conv-1")
	assert.Equal(t, StatusCollecting, s.Status)
	assert.Equal(t, IdentityUnknown, s.Identity)
	assert.Equal(t,
		[]Slot{SlotDNI, SlotDepartment, SlotProcedure, SlotSchedule},
		s.PendingSlots(),
	)
}

func TestPendingSlotsInsertsRegistrationAfterDNI(t *testing.T) {
	s := NewSession("conv-1")
	s.DNI = "99999999"
	s.Identity = IdentityNew

	assert.Equal(t,
		[]Slot{SlotFullName, SlotEmail, SlotDepartment, SlotProcedure, SlotSchedule},
		s.PendingSlots(),
	)
}

func TestPendingSlotsNeverContainsFilledSlot(t *testing.T) {
	s := NewSession("conv-1")
	s.DNI = "30111222"
	s.Identity = IdentityExisting
	s.DepartmentID = "42"

	pending := s.PendingSlots()
	assert.NotContains(t, pending, SlotDNI)
	assert.NotContains(t, pending, SlotDepartment)
	assert.Equal(t, []Slot{SlotProcedure, SlotSchedule}, pending)
}

func TestPendingSlotsStableOrderAcrossTurns(t *testing.T) {
	s := NewSession("conv-1")
	s.DNI = "99999999"
	s.Identity = IdentityNew

	first := s.PendingSlots()
	second := s.PendingSlots()
	assert.Equal(t, first, second)
}

func TestNextSlot(t *testing.T) {
	s := NewSession("conv-1")
	next, ok := s.NextSlot()
	require.True(t, ok)
	assert.Equal(t, SlotDNI, next)

	s.DNI = "30111222"
	s.Identity = IdentityExisting
	next, ok = s.NextSlot()
	require.True(t, ok)
	assert.Equal(t, SlotDepartment, next)
}

func TestCompleteRequiresVerifiedIdentity(t *testing.T) {
	s := NewSession("conv-1")
	s.DNI = "30111222"
	s.DepartmentID = "42"
	s.ProcedureID = "p1"
	s.ScheduledAt = "2025-12-01T09:00:00.000Z"

	assert.False(t, s.Complete(), "identity still unknown")

	s.Identity = IdentityExisting
	assert.True(t, s.Complete())

	s.refresh()
	assert.Equal(t, StatusReady, s.Status)
}

func TestNewIdentityRequiresNameAndEmailBeforeReady(t *testing.T) {
	s := NewSession("conv-1")
	s.DNI = "99999999"
	s.Identity = IdentityNew
	s.DepartmentID = "42"
	s.ProcedureID = "p1"
	s.ScheduledAt = "2025-12-01T09:00:00.000Z"
	s.refresh()
	assert.Equal(t, StatusCollecting, s.Status)

	s.FullName = "Juan Perez"
	s.Email = "juan@example.com"
	s.refresh()
	assert.Equal(t, StatusReady, s.Status)
}

func TestBookedIsTerminal(t *testing.T) {
	s := NewSession("conv-1")
	s.Status = StatusBooked
	s.BookingID = "t-1"

	assert.True(t, s.Terminal())
	assert.Empty(t, s.PendingSlots())

	s.refresh()
	assert.Equal(t, StatusBooked, s.Status, "refresh must not leave a terminal state")
}
