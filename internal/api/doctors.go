package api

import (
	"net/http"

	"github.com/careflow/appointment-engine/internal/directory"
)

type registerDoctorRequest struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Gender             string   `json:"gender"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	RegistrationNumber string   `json:"registration_number"`
	Specialty          *string  `json:"specialty"`
	Qualifications     []string `json:"qualifications"`
	Biography          string   `json:"biography"`
}

func registerDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerDoctorRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		d, err := svc.RegisterDoctor(r.Context(), directory.RegisterDoctorInput{
			FirstName:          req.FirstName,
			LastName:           req.LastName,
			Gender:             directory.Gender(req.Gender),
			Email:              req.Email,
			Phone:              req.Phone,
			RegistrationNumber: req.RegistrationNumber,
			Specialty:          req.Specialty,
			Qualifications:     req.Qualifications,
			Biography:          req.Biography,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDoctorResponse(d))
	}
}

func listDoctorsHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := intQuery(r, "limit", "20")
		offset := intQuery(r, "offset", "0")

		doctors, err := svc.ListDoctors(r.Context(), limit, offset)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]DoctorResponse, 0, len(doctors))
		for i := range doctors {
			out = append(out, toDoctorResponse(&doctors[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		d, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}

type updateDoctorRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Gender         *string  `json:"gender"`
	Email          *string  `json:"email"`
	Phone          *string  `json:"phone"`
	Specialty      *string  `json:"specialty"`
	Qualifications []string `json:"qualifications"`
	Biography      *string  `json:"biography"`
	Status         *string  `json:"status"`
}

func updateDoctorHandler(svc *directory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", err.Error())
			return
		}

		var req updateDoctorRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		in := directory.UpdateDoctorInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			Phone:          req.Phone,
			Specialty:      req.Specialty,
			Qualifications: req.Qualifications,
			Biography:      req.Biography,
		}
		if req.Gender != nil {
			g := directory.Gender(*req.Gender)
			in.Gender = &g
		}
		if req.Status != nil {
			s := directory.DoctorStatus(*req.Status)
			in.Status = &s
		}

		d, err := svc.UpdateDoctor(r.Context(), id, in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(d))
	}
}
