package routes

import (
	"github.com/gorilla/mux"

	"mentacrush_server/controllers"
	"mentacrush_server/services"
)

// RegisterNotificationRoutes sets up routes for the notification feed under /api/notifications
func RegisterNotificationRoutes(r *mux.Router, notificationService *services.NotificationService) {
	controller := controllers.NewNotificationController(notificationService)

	notificationRouter := r.PathPrefix("/notifications").Subrouter()
	notificationRouter.HandleFunc("", controller.HandleGetNotifications).Methods("GET")
	notificationRouter.HandleFunc("/{notificationId}/read", controller.HandleMarkAsRead).Methods("POST")
}
