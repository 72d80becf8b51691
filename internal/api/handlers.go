package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"arena-shooter/internal/game"
	"arena-shooter/internal/progress"
)

// maxBodyBytes caps request bodies; a session result is tiny
const maxBodyBytes = 4 << 10

func (h *progressHandlers) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = progress.DefaultPlayerID
	}

	p, err := h.store.GetOrCreate(playerID)
	if err != nil {
		log.Printf("⚠️ Progress lookup failed for %s: %v", playerID, err)
		writeError(w, "Failed to load progress", http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

func (h *progressHandlers) handlePostProgress(w http.ResponseWriter, r *http.Request) {
	var req progress.Result
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = progress.DefaultPlayerID
	}

	p, err := h.store.Apply(req)
	switch {
	case errors.Is(err, progress.ErrPlayerNotFound):
		writeError(w, "Player not found", http.StatusNotFound)
		return
	case errors.Is(err, progress.ErrInvalidResult):
		writeError(w, "Invalid session result", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("⚠️ Progress update failed for %s: %v", req.PlayerID, err)
		writeError(w, "Failed to save progress", http.StatusInternalServerError)
		return
	}

	log.Printf("🏆 %s: +%d kills, +%d deaths, won=%v (level %d)", p.PlayerID, req.Kills, req.Deaths, req.Won, p.Level)
	writeJSON(w, p)
}

func (h *progressHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := progress.DefaultTopPlayers
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, h.store.Top(limit))
}

func (h *spectatorHandlers) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Shared()
	if snap == nil {
		writeError(w, "Session not available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

// weaponJSON is the public view of a weapon spec
type weaponJSON struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Damage      int     `json:"damage"`
	CooldownMs  int64   `json:"cooldownMs"`
	Speed       float64 `json:"speed"`
	Magazine    int     `json:"magazine"`
	UnlockLevel int     `json:"unlockLevel"`
}

func handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	weapons := make([]weaponJSON, 0, len(game.Weapons))
	for i, spec := range game.Weapons {
		weapons = append(weapons, weaponJSON{
			Index:       i,
			Name:        spec.Name,
			Damage:      spec.Damage,
			CooldownMs:  spec.Cooldown.Milliseconds(),
			Speed:       spec.Speed,
			Magazine:    spec.Magazine,
			UnlockLevel: spec.UnlockLevel,
		})
	}
	writeJSON(w, weapons)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
