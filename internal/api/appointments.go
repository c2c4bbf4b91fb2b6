package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/booking"
	"github.com/careflow/appointment-engine/internal/calendar"
)

type bookAppointmentRequest struct {
	DoctorID  uuid.UUID          `json:"doctor_id"`
	PatientID uuid.UUID          `json:"patient_id"`
	Date      calendar.Date      `json:"date"`
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Reason    string             `json:"reason"`
}

func bookAppointmentHandler(orch *booking.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookAppointmentRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "doctor_id and patient_id are required")
			return
		}

		appt, err := orch.Book(r.Context(), booking.BookRequest{
			DoctorID:  req.DoctorID,
			PatientID: req.PatientID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Reason:    req.Reason,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(repo appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", err.Error())
			return
		}

		appt, err := repo.GetByID(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	ActorRole string `json:"actor_role"`
}

func updateAppointmentStatusHandler(orch *booking.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", err.Error())
			return
		}

		var req updateStatusRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		role := booking.Role(req.ActorRole)
		if role != booking.RoleDoctor && role != booking.RolePatient {
			writeError(w, http.StatusBadRequest, "invalid_actor_role", "actor_role must be doctor or patient")
			return
		}

		appt, err := orch.UpdateStatus(r.Context(), id, appointment.Status(req.Status), role)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(orch *booking.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", err.Error())
			return
		}

		appt, err := orch.Cancel(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func appointmentFilter(r *http.Request) (appointment.ListFilter, error) {
	var filter appointment.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := appointment.Status(raw)
		filter.Status = &s
	}

	var err error
	if filter.Date, err = dateQuery(r, "date"); err != nil {
		return filter, err
	}
	if filter.From, err = dateQuery(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = dateQuery(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func listDoctorAppointmentsHandler(repo appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		filter, err := appointmentFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		appts, err := repo.ListByDoctor(r.Context(), doctorID, filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeAppointmentList(w, appts)
	}
}

func listPatientAppointmentsHandler(repo appointment.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		filter, err := appointmentFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		appts, err := repo.ListByPatient(r.Context(), patientID, filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeAppointmentList(w, appts)
	}
}

func writeAppointmentList(w http.ResponseWriter, appts []appointment.Appointment) {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
