package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/controllers"
	"mentacrush_server/services"
)

// RegisterAuthRoutes sets up identity resolution under /api/auth
func RegisterAuthRoutes(r *mux.Router, authService *services.AuthService) {
	controller := controllers.NewAuthController(authService)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/resolve", controller.HandleResolve).Methods("POST")
}
