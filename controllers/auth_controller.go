package controllers

import (
	"net/http"

	"mentacrush_server/middleware"
	"mentacrush_server/services"
)

// AuthController exposes the identity resolution endpoint.
type AuthController struct {
	AuthService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// HandleResolve ensures the caller's profile exists and returns it. The
// client calls this once after sign-in; first resolution creates the
// profile document.
func (ac *AuthController) HandleResolve(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r)
	if !ok {
		writeError(w, services.ErrUnauthenticated)
		return
	}

	profile, err := ac.AuthService.EnsureProfile(r.Context(), session)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
