package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mentacrush_server/middleware"
	"mentacrush_server/models"
	"mentacrush_server/services"
)

// UserProfileController handles HTTP requests for user profiles
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController creates a new UserProfileController instance
func NewUserProfileController(userProfileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: userProfileService}
}

// HandleCreateProfile stores the caller's profile from the request body. The
// userId always comes from the session, never from the payload.
func (c *UserProfileController) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)

	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}
	profile.UserID = session.UserID
	if profile.DisplayName == "" {
		profile.DisplayName = session.DisplayName
	}

	created, err := c.UserProfileService.CreateProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGetProfile returns a single profile by user id.
func (c *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	profile, err := c.UserProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile applies a named-field patch to the caller's profile.
func (c *UserProfileController) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	userID := mux.Vars(r)["userId"]
	if userID != session.UserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You can only edit your own profile"})
		return
	}

	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	profile, err := c.UserProfileService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleListProfiles lists candidate profiles, excluding the caller.
func (c *UserProfileController) HandleListProfiles(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	profiles, err := c.UserProfileService.ListProfiles(r.Context(), session.UserID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
