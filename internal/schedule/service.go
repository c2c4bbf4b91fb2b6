package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
)

var (
	ErrOverlappingTemplate = errors.New("doctor already has a template covering part of this range")
	ErrInvalidTemplate     = errors.New("invalid weekly schedule template")
)

// LeaveCalendar answers whether a doctor has an approved leave covering a
// date. Leaves are date-granular, so a covering leave suppresses the whole
// day.
type LeaveCalendar interface {
	HasApprovedLeave(ctx context.Context, doctorID uuid.UUID, date calendar.Date) (bool, error)
}

// BookedCalendar returns the intervals held by SCHEDULED or CONFIRMED
// appointments for a doctor on a date.
type BookedCalendar interface {
	BookedIntervals(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]calendar.Interval, error)
}

type Service struct {
	repo   Repository
	leaves LeaveCalendar
	booked BookedCalendar
}

func NewService(repo Repository, leaves LeaveCalendar, booked BookedCalendar) *Service {
	return &Service{
		repo:   repo,
		leaves: leaves,
		booked: booked,
	}
}

type DayScheduleInput struct {
	DayOfWeek           time.Weekday
	IsAvailable         bool
	StartTime           calendar.TimeOfDay
	EndTime             calendar.TimeOfDay
	SlotDurationMinutes int
}

type CreateTemplateInput struct {
	DoctorID      uuid.UUID
	EffectiveFrom calendar.Date
	EffectiveTo   *calendar.Date
	Days          []DayScheduleInput
}

// CreateTemplate stores a new weekly template after checking the
// one-active-template-per-date invariant against the doctor's existing
// templates.
func (s *Service) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*WeeklySchedule, error) {
	days, err := buildDays(in.Days)
	if err != nil {
		return nil, err
	}
	if in.EffectiveFrom.IsZero() {
		return nil, fmt.Errorf("%w: effective-from date is required", ErrInvalidTemplate)
	}
	if in.EffectiveTo != nil && in.EffectiveTo.Before(in.EffectiveFrom) {
		return nil, fmt.Errorf("%w: effective range is inverted", ErrInvalidTemplate)
	}

	now := time.Now()
	ws := &WeeklySchedule{
		ID:            uuid.New(),
		DoctorID:      in.DoctorID,
		EffectiveFrom: in.EffectiveFrom,
		EffectiveTo:   in.EffectiveTo,
		Days:          days,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.checkNoOverlap(ctx, ws, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return ws, nil
}

type UpdateTemplateInput struct {
	EffectiveFrom *calendar.Date
	EffectiveTo   *calendar.Date
	ClearTo       bool // make the range open-ended
	Days          []DayScheduleInput
}

func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, in UpdateTemplateInput) (*WeeklySchedule, error) {
	ws, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	if in.EffectiveFrom != nil {
		ws.EffectiveFrom = *in.EffectiveFrom
	}
	if in.ClearTo {
		ws.EffectiveTo = nil
	} else if in.EffectiveTo != nil {
		ws.EffectiveTo = in.EffectiveTo
	}
	if in.Days != nil {
		days, err := buildDays(in.Days)
		if err != nil {
			return nil, err
		}
		ws.Days = days
	}

	if ws.EffectiveTo != nil && ws.EffectiveTo.Before(ws.EffectiveFrom) {
		return nil, fmt.Errorf("%w: effective range is inverted", ErrInvalidTemplate)
	}

	if err := s.checkNoOverlap(ctx, ws, ws.ID); err != nil {
		return nil, err
	}

	ws.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return ws, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*WeeklySchedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]WeeklySchedule, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// AvailableSlots derives the concrete bookable slots for a doctor on a date:
// active template -> weekday window -> slot walk, then each slot is marked
// unavailable if an approved leave covers the date or an active appointment
// overlaps it. Pure read; callers must not rely on it staying fresh, the
// ledger re-checks at commit time.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]TimeSlot, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", calendar.ErrInvalidInput)
	}

	ws, err := s.repo.FindActive(ctx, doctorID, date)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active template: %w", err)
	}

	day, ok := ws.Day(date.Weekday())
	if !ok || !day.IsAvailable {
		return nil, nil
	}

	slots := expandDay(day)
	if len(slots) == 0 {
		return nil, nil
	}

	onLeave, err := s.leaves.HasApprovedLeave(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("check leave: %w", err)
	}
	if onLeave {
		for i := range slots {
			slots[i].Available = false
		}
		return slots, nil
	}

	booked, err := s.booked.BookedIntervals(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("load booked intervals: %w", err)
	}
	for i := range slots {
		for _, iv := range booked {
			if slots[i].Interval().Overlaps(iv) {
				slots[i].Available = false
				break
			}
		}
	}

	return slots, nil
}

// checkNoOverlap enforces that no two templates for the same doctor cover a
// common date. excludeID skips the template being updated.
func (s *Service) checkNoOverlap(ctx context.Context, ws *WeeklySchedule, excludeID uuid.UUID) error {
	existing, err := s.repo.ListByDoctor(ctx, ws.DoctorID)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	for i := range existing {
		if existing[i].ID == excludeID {
			continue
		}
		if ws.RangeOverlaps(&existing[i]) {
			return ErrOverlappingTemplate
		}
	}
	return nil
}

func buildDays(inputs []DayScheduleInput) ([]DaySchedule, error) {
	if len(inputs) != 7 {
		return nil, fmt.Errorf("%w: exactly one day schedule per weekday is required", ErrInvalidTemplate)
	}

	seen := [7]bool{}
	days := make([]DaySchedule, 0, 7)
	for _, in := range inputs {
		if in.DayOfWeek < time.Sunday || in.DayOfWeek > time.Saturday {
			return nil, fmt.Errorf("%w: day of week %d out of range", ErrInvalidTemplate, in.DayOfWeek)
		}
		if seen[in.DayOfWeek] {
			return nil, fmt.Errorf("%w: duplicate day of week %s", ErrInvalidTemplate, in.DayOfWeek)
		}
		seen[in.DayOfWeek] = true

		if in.IsAvailable {
			if !in.StartTime.Valid() || !in.EndTime.Valid() || in.StartTime >= in.EndTime {
				return nil, fmt.Errorf("%w: %s window must satisfy start < end", ErrInvalidTemplate, in.DayOfWeek)
			}
			if in.SlotDurationMinutes <= 0 {
				return nil, fmt.Errorf("%w: %s slot duration must be positive", ErrInvalidTemplate, in.DayOfWeek)
			}
		}

		days = append(days, DaySchedule{
			ID:                  uuid.New(),
			DayOfWeek:           in.DayOfWeek,
			IsAvailable:         in.IsAvailable,
			StartTime:           in.StartTime,
			EndTime:             in.EndTime,
			SlotDurationMinutes: in.SlotDurationMinutes,
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].DayOfWeek < days[j].DayOfWeek })
	return days, nil
}
