package api

import (
	"net/http"
	"time"

	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/schedule"
)

type createScheduleRequest struct {
	EffectiveFrom calendar.Date     `json:"effective_from"`
	EffectiveTo   *calendar.Date    `json:"effective_to"`
	Days          []DayScheduleBody `json:"days"`
}

func toDayInputs(days []DayScheduleBody) []schedule.DayScheduleInput {
	out := make([]schedule.DayScheduleInput, 0, len(days))
	for _, d := range days {
		out = append(out, schedule.DayScheduleInput{
			DayOfWeek:           time.Weekday(d.DayOfWeek),
			IsAvailable:         d.IsAvailable,
			StartTime:           d.StartTime,
			EndTime:             d.EndTime,
			SlotDurationMinutes: d.SlotDurationMinutes,
		})
	}
	return out
}

func createScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		var req createScheduleRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		ws, err := svc.CreateTemplate(r.Context(), schedule.CreateTemplateInput{
			DoctorID:      doctorID,
			EffectiveFrom: req.EffectiveFrom,
			EffectiveTo:   req.EffectiveTo,
			Days:          toDayInputs(req.Days),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toScheduleResponse(ws))
	}
}

func listSchedulesHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		schedules, err := svc.ListByDoctor(r.Context(), doctorID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ScheduleResponse, 0, len(schedules))
		for i := range schedules {
			out = append(out, toScheduleResponse(&schedules[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type updateScheduleRequest struct {
	EffectiveFrom *calendar.Date    `json:"effective_from"`
	EffectiveTo   *calendar.Date    `json:"effective_to"`
	ClearTo       bool              `json:"clear_effective_to"`
	Days          []DayScheduleBody `json:"days"`
}

func updateScheduleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := uuidParam(r, "scheduleID")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_schedule_id", err.Error())
			return
		}

		var req updateScheduleRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := schedule.UpdateTemplateInput{
			EffectiveFrom: req.EffectiveFrom,
			EffectiveTo:   req.EffectiveTo,
			ClearTo:       req.ClearTo,
		}
		if req.Days != nil {
			in.Days = toDayInputs(req.Days)
		}

		ws, err := svc.UpdateTemplate(r.Context(), scheduleID, in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toScheduleResponse(ws))
	}
}

func availableSlotsHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		date, err := dateQuery(r, "date")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		if date == nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date query parameter is required")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), doctorID, *date)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSlotsResponse(doctorID, *date, slots))
	}
}
