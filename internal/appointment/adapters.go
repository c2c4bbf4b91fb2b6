package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/leave"
)

// LeaveWarningSource adapts the repository to the leave workflow's
// AppointmentFinder, surfacing active appointments inside an approved
// leave's range.
type LeaveWarningSource struct {
	repo Repository
}

func NewLeaveWarningSource(repo Repository) *LeaveWarningSource {
	return &LeaveWarningSource{repo: repo}
}

func (s *LeaveWarningSource) ActiveAppointmentsInRange(ctx context.Context, doctorID uuid.UUID, from, to calendar.Date) ([]leave.AppointmentRef, error) {
	appts, err := s.repo.ActiveInRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	refs := make([]leave.AppointmentRef, 0, len(appts))
	for _, a := range appts {
		refs = append(refs, leave.AppointmentRef{
			ID:        a.ID,
			PatientID: a.PatientID,
			Date:      a.Date,
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
		})
	}
	return refs, nil
}
