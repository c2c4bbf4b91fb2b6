package api

import (
	"errors"
	"net/http"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/booking"
	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/leave"
	"github.com/careflow/appointment-engine/internal/schedule"
)

// writeDomainError maps sentinel errors from the domain packages onto HTTP
// statuses and stable error codes. Anything unrecognised is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, directory.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
	case errors.Is(err, schedule.ErrInvalidTemplate):
		writeError(w, http.StatusBadRequest, "invalid_template", err.Error())
	case errors.Is(err, leave.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_leave_range", err.Error())

	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, directory.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, schedule.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	case errors.Is(err, leave.ErrLeaveNotFound):
		writeError(w, http.StatusNotFound, "leave_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())

	case errors.Is(err, directory.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, schedule.ErrOverlappingTemplate):
		writeError(w, http.StatusConflict, "overlapping_template", err.Error())
	case errors.Is(err, leave.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "leave_already_decided", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "slot is not available, pick another one")
	case errors.Is(err, booking.ErrDoctorNotBookable):
		writeError(w, http.StatusConflict, "doctor_not_bookable", err.Error())
	case errors.Is(err, appointment.ErrConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())

	case errors.Is(err, booking.ErrRoleNotAllowed):
		writeError(w, http.StatusForbidden, "role_not_allowed", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
