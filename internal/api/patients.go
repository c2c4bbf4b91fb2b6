package api

import (
	"net/http"

	"github.com/careflow/appointment-engine/internal/calendar"
	"github.com/careflow/appointment-engine/internal/directory"
)

type registerPatientRequest struct {
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Gender         string        `json:"gender"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	DateOfBirth    calendar.Date `json:"date_of_birth"`
	Address        *string       `json:"address"`
	MedicalHistory *string       `json:"medical_history"`
}

func registerPatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerPatientRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := svc.RegisterPatient(r.Context(), directory.RegisterPatientInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Gender:         directory.Gender(req.Gender),
			Email:          req.Email,
			Phone:          req.Phone,
			DateOfBirth:    req.DateOfBirth,
			Address:        req.Address,
			MedicalHistory: req.MedicalHistory,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func getPatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

type updatePatientRequest struct {
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	Gender         *string        `json:"gender"`
	Phone          *string        `json:"phone"`
	DateOfBirth    *calendar.Date `json:"date_of_birth"`
	Address        *string        `json:"address"`
	MedicalHistory *string        `json:"medical_history"`
}

func updatePatientHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		var req updatePatientRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := directory.UpdatePatientInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Phone:          req.Phone,
			DateOfBirth:    req.DateOfBirth,
			Address:        req.Address,
			MedicalHistory: req.MedicalHistory,
		}
		if req.Gender != nil {
			g := directory.Gender(*req.Gender)
			in.Gender = &g
		}

		p, err := svc.UpdatePatient(r.Context(), id, in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}
