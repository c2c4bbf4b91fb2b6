package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/careflow/appointment-engine/internal/appointment"
	"github.com/careflow/appointment-engine/internal/booking"
	"github.com/careflow/appointment-engine/internal/directory"
	"github.com/careflow/appointment-engine/internal/leave"
	"github.com/careflow/appointment-engine/internal/schedule"
)

type RouterConfig struct {
	Directory    *directory.Service
	Schedules    *schedule.Service
	Leaves       *leave.Service
	Appointments appointment.Repository
	Bookings     *booking.Orchestrator

	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Log     *zap.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(MetricsMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/doctors", func(r chi.Router) {
			r.Post("/", registerDoctorHandler(cfg.Directory))
			r.Get("/", listDoctorsHandler(cfg.Directory))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getDoctorHandler(cfg.Directory))
				r.Patch("/", updateDoctorHandler(cfg.Directory))

				r.Post("/schedule", createScheduleHandler(cfg.Schedules))
				r.Get("/schedule", listSchedulesHandler(cfg.Schedules))
				r.Put("/schedule/{scheduleID}", updateScheduleHandler(cfg.Schedules))
				r.Get("/schedule/available-slots", availableSlotsHandler(cfg.Schedules))

				r.Post("/leaves", requestLeaveHandler(cfg.Leaves))
				r.Get("/leaves", listLeavesHandler(cfg.Leaves))

				r.Get("/appointments", listDoctorAppointmentsHandler(cfg.Appointments))
			})
		})

		r.Route("/patients", func(r chi.Router) {
			r.Post("/", registerPatientHandler(cfg.Directory))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getPatientHandler(cfg.Directory))
				r.Patch("/", updatePatientHandler(cfg.Directory))
				r.Get("/appointments", listPatientAppointmentsHandler(cfg.Appointments))
			})
		})

		r.Route("/leaves/{id}", func(r chi.Router) {
			r.Get("/", getLeaveHandler(cfg.Leaves))
			r.Post("/approve", decideLeaveHandler(cfg.Leaves, true))
			r.Post("/reject", decideLeaveHandler(cfg.Leaves, false))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", bookAppointmentHandler(cfg.Bookings))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getAppointmentHandler(cfg.Appointments))
				r.Patch("/status", updateAppointmentStatusHandler(cfg.Bookings))
				r.Post("/cancel", cancelAppointmentHandler(cfg.Bookings))
			})
		})
	})

	return r
}
