package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/controllers"
	"mentacrush_server/services"
)

// RegisterActivityRoutes sets up the activity feed under /api/activities
func RegisterActivityRoutes(r *mux.Router, activityService *services.ActivityService) {
	controller := controllers.NewActivityController(activityService)

	activityRouter := r.PathPrefix("/activities").Subrouter()
	activityRouter.HandleFunc("", controller.HandleGetActivities).Methods("GET")
}
