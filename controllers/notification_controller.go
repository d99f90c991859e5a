package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"mentacrush_server/middleware"
	"mentacrush_server/services"
)

// NotificationController handles the match notification feed.
type NotificationController struct {
	NotificationService *services.NotificationService
}

func NewNotificationController(service *services.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: service}
}

// HandleGetNotifications returns the caller's feed, newest first.
func (nc *NotificationController) HandleGetNotifications(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)

	notifications, err := nc.NotificationService.GetNotifications(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// HandleMarkAsRead flags one notification as read.
func (nc *NotificationController) HandleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	notificationID := mux.Vars(r)["notificationId"]

	if err := nc.NotificationService.MarkAsRead(r.Context(), session.UserID, notificationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
