package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/controllers"
	"mentacrush_server/services"
)

// RegisterHintRoutes sets up routes for hint operations under /api/hints
func RegisterHintRoutes(r *mux.Router, matchService *services.MatchService, hintService *services.HintService) {
	controller := controllers.NewHintController(matchService, hintService)

	hintRouter := r.PathPrefix("/hints").Subrouter()
	hintRouter.HandleFunc("", controller.HandleSendHint).Methods("POST")
	hintRouter.HandleFunc("", controller.HandleGetHints).Methods("GET")
	hintRouter.HandleFunc("/{hintId}/read", controller.HandleMarkHintRead).Methods("POST")
}
