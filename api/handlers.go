package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatsResponse struct {
	Users    int64  `json:"users"`
	Sessions int    `json:"sessions"`
	Uptime   string `json:"uptime"`
}

type QuotaResponse struct {
	UserID       int64      `json:"user_id"`
	Tier         string     `json:"tier"`
	Used         int        `json:"used"`
	Remaining    int        `json:"remaining"`
	MaxSize      int64      `json:"max_size"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
	Dropped   int  `json:"dropped"`
}

var tierNames = []string{"free", "premium", "owner"}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	users, err := s.opts.Directory.CountUsers(r.Context())
	if err != nil {
		respondError(w, "failed to count users", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, StatsResponse{
		Users:    users,
		Sessions: s.opts.Engine.Sessions().Len(),
		Uptime:   time.Since(s.opts.Started).Round(time.Second).String(),
	})
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *server) handleUserQuota(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	st, err := s.opts.Engine.Policy().Status(r.Context(), id)
	if err != nil {
		respondError(w, "failed to get quota", http.StatusInternalServerError)
		return
	}
	tier := tierNames[0]
	if int(st.Tier) < len(tierNames) {
		tier = tierNames[st.Tier]
	}
	respondJSON(w, http.StatusOK, QuotaResponse{
		UserID:       id,
		Tier:         tier,
		Used:         st.Used,
		Remaining:    st.Remaining,
		MaxSize:      st.MaxSize,
		PremiumUntil: st.PremiumUntil,
	})
}

func (s *server) handleCancelQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondError(w, "invalid user id", http.StatusBadRequest)
		return
	}
	dropped, cancelled := s.opts.Engine.Cancel(id)
	respondJSON(w, http.StatusOK, CancelResponse{Cancelled: cancelled, Dropped: dropped})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
