package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/leave"
)

type requestLeaveRequest struct {
	StartDate calendar.Date `json:"start_date"`
	EndDate   calendar.Date `json:"end_date"`
	Reason    string        `json:"reason"`
}

func requestLeaveHandler(svc *leave.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		var req requestLeaveRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		l, err := svc.Request(r.Context(), doctorID, req.StartDate, req.EndDate, req.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLeaveResponse(l))
	}
}

func listLeavesHandler(svc *leave.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		var filter leave.ListFilter
		if raw := r.URL.Query().Get("status"); raw != "" {
			s := leave.Status(raw)
			filter.Status = &s
		}
		if filter.From, err = dateQuery(r, "from"); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		if filter.To, err = dateQuery(r, "to"); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		leaves, err := svc.ListByDoctor(r.Context(), doctorID, filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]LeaveResponse, 0, len(leaves))
		for i := range leaves {
			out = append(out, toLeaveResponse(&leaves[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getLeaveHandler(svc *leave.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_leave_id", err.Error())
			return
		}

		l, err := svc.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveResponse(l))
	}
}

type decideLeaveRequest struct {
	ActorID         uuid.UUID `json:"actor_id"`
	RejectionReason string    `json:"rejection_reason"`
}

func decideLeaveHandler(svc *leave.Service, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_leave_id", err.Error())
			return
		}

		var req decideLeaveRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.ActorID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "invalid_actor_id", "actor_id is required")
			return
		}

		l, warnings, err := svc.Decide(r.Context(), id, approve, req.ActorID, req.RejectionReason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLeaveDecisionResponse(l, warnings))
	}
}
