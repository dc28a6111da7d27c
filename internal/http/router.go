package http

import (
	"net/http"

	"fieldops-backend/internal/handlers"
	"fieldops-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	jobHandler *handlers.JobHandler,
	unitEntryHandler *handlers.UnitEntryHandler,
	priceBookHandler *handlers.PriceBookHandler,
	auditLogHandler *handlers.AuditLogHandler,
	healthHandler *handlers.HealthHandler,
	monitoringHandler *handlers.MonitoringHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health endpoints (no auth, used by probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected API routes - Users (admin manages accounts)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")

	// Protected API routes - Jobs
	// Role checks beyond route level happen in the workflow authorization
	// table; the route gate only blocks obviously wrong roles early.
	jobsAPI := r.PathPrefix("/api/jobs").Subrouter()
	jobsAPI.Use(authMiddleware.Authenticate)
	jobsAPI.HandleFunc("", jobHandler.ListJobs).Methods("GET")
	jobsAPI.HandleFunc("", authMiddleware.RequireRole("pm", "admin")(http.HandlerFunc(jobHandler.CreateJob)).ServeHTTP).Methods("POST")
	jobsAPI.HandleFunc("/{id}", jobHandler.GetJob).Methods("GET")
	jobsAPI.HandleFunc("/{id}/status", jobHandler.UpdateStatus).Methods("PUT")
	jobsAPI.HandleFunc("/{id}/assign", authMiddleware.RequireRole("gf", "pm", "admin")(http.HandlerFunc(jobHandler.Assign)).ServeHTTP).Methods("PUT")
	jobsAPI.HandleFunc("/{id}/dependencies", jobHandler.AddDependency).Methods("POST")
	jobsAPI.HandleFunc("/{id}/dependencies/{dep_id}", jobHandler.CycleDependency).Methods("PUT")
	jobsAPI.HandleFunc("/{id}/prefield-checklist", authMiddleware.RequireRole("gf", "pm", "admin")(http.HandlerFunc(jobHandler.ApplyPrefieldChecklist)).ServeHTTP).Methods("POST")
	jobsAPI.HandleFunc("/{id}/unit-entries", unitEntryHandler.ListByJob).Methods("GET")

	// Protected API routes - Unit Entries (digital receipts)
	unitsAPI := r.PathPrefix("/api/units").Subrouter()
	unitsAPI.Use(authMiddleware.Authenticate)
	unitsAPI.HandleFunc("", unitEntryHandler.Create).Methods("POST")
	unitsAPI.HandleFunc("/unbilled", unitEntryHandler.ListUnbilled).Methods("GET")
	unitsAPI.HandleFunc("/disputed", unitEntryHandler.ListDisputed).Methods("GET")
	unitsAPI.HandleFunc("/photos/upload-url", unitEntryHandler.PhotoUploadURL).Methods("POST")
	unitsAPI.HandleFunc("/{id}", unitEntryHandler.Get).Methods("GET")
	unitsAPI.HandleFunc("/{id}", unitEntryHandler.SoftDelete).Methods("DELETE")
	unitsAPI.HandleFunc("/{id}/submit", unitEntryHandler.Submit).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/verify", unitEntryHandler.Verify).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/approve", unitEntryHandler.Approve).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/dispute", unitEntryHandler.Dispute).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/resolve", unitEntryHandler.Resolve).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/adjust", unitEntryHandler.Adjust).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/invoice", unitEntryHandler.MarkInvoiced).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/pay", unitEntryHandler.MarkPaid).Methods("PUT")
	unitsAPI.HandleFunc("/{id}/receipt", unitEntryHandler.Receipt).Methods("GET")

	// Protected API routes - Price Book
	priceBookAPI := r.PathPrefix("/api/price-book").Subrouter()
	priceBookAPI.Use(authMiddleware.Authenticate)
	priceBookAPI.HandleFunc("", priceBookHandler.ListItems).Methods("GET")
	priceBookAPI.HandleFunc("", authMiddleware.RequireRole("pm", "admin")(http.HandlerFunc(priceBookHandler.CreateItem)).ServeHTTP).Methods("POST")
	priceBookAPI.HandleFunc("/{id}/price", authMiddleware.RequireRole("pm", "admin")(http.HandlerFunc(priceBookHandler.UpdatePrice)).ServeHTTP).Methods("PUT")

	// Protected API routes - Audit trail
	auditAPI := r.PathPrefix("/api/audit-logs").Subrouter()
	auditAPI.Use(authMiddleware.Authenticate)
	auditAPI.HandleFunc("", authMiddleware.RequireRole("pm", "admin")(http.HandlerFunc(auditLogHandler.ListRecent)).ServeHTTP).Methods("GET")
	auditAPI.HandleFunc("/{target_type}/{target_id}", auditLogHandler.ListByTarget).Methods("GET")

	// Protected API routes - Monitoring snapshot (admin only)
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.Authenticate)
	monitoringAPI.HandleFunc("/stats", authMiddleware.RequireAdmin(http.HandlerFunc(monitoringHandler.GetStats)).ServeHTTP).Methods("GET")

	return r
}
