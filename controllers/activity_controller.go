package controllers

import (
	"net/http"
	"strconv"

	"mentacrush_server/services"
)

// ActivityController serves the public activity feed.
type ActivityController struct {
	ActivityService *services.ActivityService
}

func NewActivityController(service *services.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: service}
}

// HandleGetActivities returns recent feed entries, optionally scoped to one
// user via ?userId=.
func (ac *ActivityController) HandleGetActivities(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	userID := r.URL.Query().Get("userId")

	var err error
	var activities interface{}
	if userID != "" {
		activities, err = ac.ActivityService.GetForUser(r.Context(), userID, limit)
	} else {
		activities, err = ac.ActivityService.GetRecent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}
