package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/leave"
	"github.com/careflow/appointment-engine/internal/schedule"
)

type DoctorResponse struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Gender             string    `json:"gender"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	RegistrationNumber string    `json:"registration_number"`
	Specialty          *string   `json:"specialty,omitempty"`
	Qualifications     []string  `json:"qualifications,omitempty"`
	Biography          string    `json:"biography,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toDoctorResponse(d *directory.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:                 d.ID,
		FirstName:          d.FirstName,
		LastName:           d.LastName,
		Gender:             string(d.Gender),
		Email:              d.Email,
		Phone:              d.Phone,
		RegistrationNumber: d.RegistrationNumber,
		Specialty:          d.Specialty,
		Qualifications:     d.Qualifications,
		Biography:          d.Biography,
		Status:             string(d.Status),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type PatientResponse struct {
	ID             uuid.UUID     `json:"id"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Gender         string        `json:"gender"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone,omitempty"`
	DateOfBirth    calendar.Date `json:"date_of_birth"`
	Address        *string       `json:"address,omitempty"`
	MedicalHistory *string       `json:"medical_history,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func toPatientResponse(p *directory.Patient) PatientResponse {
	return PatientResponse{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Gender:         string(p.Gender),
		Email:          p.Email,
		Phone:          p.Phone,
		DateOfBirth:    p.DateOfBirth,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type DayScheduleBody struct {
	DayOfWeek           int                `json:"day_of_week"` // 0 = Sunday
	IsAvailable         bool               `json:"is_available"`
	StartTime           calendar.TimeOfDay `json:"start_time"`
	EndTime             calendar.TimeOfDay `json:"end_time"`
	SlotDurationMinutes int                `json:"slot_duration_minutes"`
}

type ScheduleResponse struct {
	ID            uuid.UUID         `json:"id"`
	DoctorID      uuid.UUID         `json:"doctor_id"`
	EffectiveFrom calendar.Date     `json:"effective_from"`
	EffectiveTo   *calendar.Date    `json:"effective_to,omitempty"`
	Days          []DayScheduleBody `json:"days"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toScheduleResponse(ws *schedule.WeeklySchedule) ScheduleResponse {
	days := make([]DayScheduleBody, 0, len(ws.Days))
	for _, d := range ws.Days {
		days = append(days, DayScheduleBody{
			DayOfWeek:           int(d.DayOfWeek),
			IsAvailable:         d.IsAvailable,
			StartTime:           d.StartTime,
			EndTime:             d.EndTime,
			SlotDurationMinutes: d.SlotDurationMinutes,
		})
	}
	return ScheduleResponse{
		ID:            ws.ID,
		DoctorID:      ws.DoctorID,
		EffectiveFrom: ws.EffectiveFrom,
		EffectiveTo:   ws.EffectiveTo,
		Days:          days,
		CreatedAt:     ws.CreatedAt,
		UpdatedAt:     ws.UpdatedAt,
	}
}

type SlotResponse struct {
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Available bool               `json:"available"`
}

type SlotsResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	Date     calendar.Date  `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}

func toSlotsResponse(doctorID uuid.UUID, date calendar.Date, slots []schedule.TimeSlot) SlotsResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{StartTime: s.StartTime, EndTime: s.EndTime, Available: s.Available})
	}
	return SlotsResponse{DoctorID: doctorID, Date: date, Slots: out}
}

type LeaveResponse struct {
	ID              uuid.UUID     `json:"id"`
	DoctorID        uuid.UUID     `json:"doctor_id"`
	StartDate       calendar.Date `json:"start_date"`
	EndDate         calendar.Date `json:"end_date"`
	Reason          string        `json:"reason,omitempty"`
	Status          string        `json:"status"`
	RequestedAt     time.Time     `json:"requested_at"`
	ApprovedBy      *uuid.UUID    `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
}

func toLeaveResponse(l *leave.Leave) LeaveResponse {
	return LeaveResponse{
		ID:              l.ID,
		DoctorID:        l.DoctorID,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		Reason:          l.Reason,
		Status:          string(l.Status),
		RequestedAt:     l.RequestedAt,
		ApprovedBy:      l.ApprovedBy,
		ApprovedAt:      l.ApprovedAt,
		RejectionReason: l.RejectionReason,
	}
}

type AffectedAppointment struct {
	ID        uuid.UUID          `json:"id"`
	PatientID uuid.UUID          `json:"patient_id"`
	Date      calendar.Date      `json:"date"`
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
}

// LeaveDecisionResponse carries the decided leave plus the active
// appointments inside its range, so front-of-house staff can reschedule them.
type LeaveDecisionResponse struct {
	Leave                LeaveResponse         `json:"leave"`
	AffectedAppointments []AffectedAppointment `json:"affected_appointments,omitempty"`
}

func toLeaveDecisionResponse(l *leave.Leave, warnings []leave.AppointmentRef) LeaveDecisionResponse {
	affected := make([]AffectedAppointment, 0, len(warnings))
	for _, ref := range warnings {
		affected = append(affected, AffectedAppointment{
			ID:        ref.ID,
			PatientID: ref.PatientID,
			Date:      ref.Date,
			StartTime: ref.StartTime,
			EndTime:   ref.EndTime,
		})
	}
	return LeaveDecisionResponse{Leave: toLeaveResponse(l), AffectedAppointments: affected}
}

type AppointmentResponse struct {
	ID        uuid.UUID          `json:"id"`
	DoctorID  uuid.UUID          `json:"doctor_id"`
	PatientID uuid.UUID          `json:"patient_id"`
	Date      calendar.Date      `json:"date"`
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Status    string             `json:"status"`
	Reason    string             `json:"reason,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.Date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    string(a.Status),
		Reason:    a.Reason,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
