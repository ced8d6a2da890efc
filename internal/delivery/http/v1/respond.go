package v1

import (
	"log/slog"
	"net/http"
	"vintage-backend/internal/domain"
	"vintage-backend/pkg/utils"
)

func currentUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user, ok && user != nil
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, domain.Response{Success: true, Data: data})
}

func respondPage(w http.ResponseWriter, data interface{}, meta interface{}) {
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: data, Meta: meta})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	utils.WriteJSON(w, status, domain.Response{Success: true, Message: message})
}

// respondError maps coded business errors to their HTTP statuses and
// hides everything else behind a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Handler: request failed", "path", r.URL.Path, "error", err)
	}
	utils.WriteJSON(w, status, domain.Response{Success: false, Message: domain.MessageOf(err)})
}

func unauthorized(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusUnauthorized, domain.Response{Success: false, Message: "unauthorized"})
}

func badRequest(w http.ResponseWriter, message string) {
	utils.WriteJSON(w, http.StatusBadRequest, domain.Response{Success: false, Message: message})
}
