package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mentacrush_server/middleware"
	"mentacrush_server/services"
)

// HintController handles hint sending and the received-hints inbox.
type HintController struct {
	MatchService *services.MatchService
	HintService  *services.HintService
}

func NewHintController(matchService *services.MatchService, hintService *services.HintService) *HintController {
	return &HintController{MatchService: matchService, HintService: hintService}
}

// HandleSendHint records a hint from the caller and reports the match
// outcome: no match, existing match, or a freshly created one.
func (hc *HintController) HandleSendHint(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)

	var request struct {
		ToUserID string `json:"toUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}
	if request.ToUserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "toUserId is required"})
		return
	}

	outcome, err := hc.MatchService.SendHint(r.Context(), session.UserID, request.ToUserID, session.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Hint sent"
	if outcome.NewMatch {
		message = "It's a match!"
	} else if outcome.Matched {
		message = "Already matched"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"outcome": outcome,
	})
}

// HandleGetHints returns the caller's received hints.
func (hc *HintController) HandleGetHints(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hints, err := hc.HintService.GetReceivedHints(r.Context(), session.UserID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hints)
}

// HandleMarkHintRead flags one received hint as seen.
func (hc *HintController) HandleMarkHintRead(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r)
	hintID := mux.Vars(r)["hintId"]

	if err := hc.HintService.MarkHintRead(r.Context(), session.UserID, hintID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
