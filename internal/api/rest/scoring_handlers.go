package rest

import (
	"encoding/json"
	"net/http"

	"github.com/fortuna/faceoff/internal/service"
	"github.com/gorilla/mux"
)

// RecordGoal handles POST /api/v1/games/{gameID}/goals
func (h *Handler) RecordGoal(w http.ResponseWriter, r *http.Request) {
	var entry service.GoalEntry
	if err := decodeEntry(w, r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.deps.Scoring.RecordGoal(r.Context(), mux.Vars(r)["gameID"], entry)
	if err != nil {
		respondServiceError(w, r, "Failed to record goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// RecordShot handles POST /api/v1/games/{gameID}/shots
func (h *Handler) RecordShot(w http.ResponseWriter, r *http.Request) {
	var entry service.ShotEntry
	if err := decodeEntry(w, r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.deps.Scoring.RecordShot(r.Context(), mux.Vars(r)["gameID"], entry)
	if err != nil {
		respondServiceError(w, r, "Failed to record shot", err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// TickClock handles POST /api/v1/games/{gameID}/clock/tick
func (h *Handler) TickClock(w http.ResponseWriter, r *http.Request) {
	game, err := h.deps.Games.TickClock(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		respondServiceError(w, r, "Failed to advance clock", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game_id": game.ID,
		"period":  game.Period.Int32,
		"clock":   game.Clock.String,
	})
}

func decodeEntry(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
