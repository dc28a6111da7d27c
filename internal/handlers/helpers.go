package handlers

import (
	"errors"
	"net/http"

	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/workflow"

	"fieldops-backend/pkg/utils"
)

// actorFromRequest builds the workflow actor from the authenticated
// request context. Routes behind the auth middleware always have it.
func actorFromRequest(r *http.Request) (workflow.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return workflow.Actor{}, false
	}
	name, _ := middleware.GetNameFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	return workflow.Actor{UserID: userID, Name: name, Role: role}, true
}

// writeWorkflowError maps workflow sentinel errors to HTTP status codes.
// invalidTransitionCode differs per surface: job routes report 400 for a
// bad edge, unit entry routes report 409 because the entry exists but is
// in a conflicting state.
func writeWorkflowError(w http.ResponseWriter, err error, entity string, invalidTransitionCode int) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		metrics.RejectedTransitionsTotal.WithLabelValues(entity, "forbidden").Inc()
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		metrics.RejectedTransitionsTotal.WithLabelValues(entity, "invalid_transition").Inc()
		utils.Error(w, invalidTransitionCode, err.Error())
	case errors.Is(err, workflow.ErrValidation):
		utils.Error(w, http.StatusBadRequest, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}
