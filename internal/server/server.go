// Package server exposes the tracker over HTTP for sidecars and operators.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paladin-bladesmith/bifrost/internal/logging"
	"github.com/paladin-bladesmith/bifrost/internal/tracker"
)

const (
	defaultUpcomingCount = 8
	maxUpcomingCount     = 64
)

// Server serves the leader schedule API.
type Server struct {
	tracker    *tracker.Tracker
	logger     logging.Logger
	httpServer *http.Server
}

func New(addr string, tr *tracker.Tracker, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	s := &Server{tracker: tr, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/leader/", s.handleLeader)
	mux.HandleFunc("/v1/leaders/upcoming", s.handleUpcoming)
	mux.HandleFunc("/v1/schedule/", s.handleSchedule)
	mux.HandleFunc("/v1/epoch", s.handleEpoch)
	mux.HandleFunc("/v1/slot", s.handleSlot)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	go func() {
		s.logger.Infof("schedule API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("schedule API server error: %v", err)
		}
	}()
	return nil
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		s.logger.Errorf("schedule API shutdown error: %v", err)
	}
}

// GET /v1/leader/{slot}
func (s *Server) handleLeader(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/v1/leader/")
	if raw == r.URL.Path || raw == "" {
		writeError(w, http.StatusBadRequest, "slot required")
		return
	}
	slot, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	leader, err := s.tracker.LeaderForSlot(r.Context(), slot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	endpoint, _ := s.tracker.EndpointOf(leader)
	info := s.tracker.EpochInfo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slot":     slot,
		"epoch":    slot / info.SlotsPerEpoch,
		"leader":   leader.String(),
		"endpoint": endpoint,
	})
}

// GET /v1/leaders/upcoming?slot=N&count=K
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	fromSlot := s.tracker.EpochInfo().HeadSlot
	if raw := q.Get("slot"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid slot")
			return
		}
		fromSlot = v
	}

	count := defaultUpcomingCount
	if raw := q.Get("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		if v > maxUpcomingCount {
			v = maxUpcomingCount
		}
		count = v
	}

	leaders, err := s.tracker.UpcomingLeaders(r.Context(), fromSlot, count)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]interface{}, 0, len(leaders))
	for _, le := range leaders {
		resp = append(resp, map[string]interface{}{
			"id":       le.ID.String(),
			"endpoint": le.Endpoint,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from_slot": fromSlot,
		"count":     count,
		"leaders":   resp,
	})
}

// GET /v1/schedule/{epoch}
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/v1/schedule/")
	if raw == r.URL.Path || raw == "" {
		writeError(w, http.StatusBadRequest, "epoch required")
		return
	}
	epoch, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid epoch")
		return
	}

	sched, err := s.tracker.ScheduleFor(r.Context(), epoch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	leaders := make(map[string][]uint64)
	for id, offsets := range sched.ByIdentity() {
		leaders[id.String()] = offsets
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"epoch":           sched.Epoch(),
		"slots_per_epoch": sched.Len(),
		"leaders":         leaders,
	})
}

// GET /v1/epoch
func (s *Server) handleEpoch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info := s.tracker.EpochInfo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"epoch":           info.Epoch,
		"head_slot":       info.HeadSlot,
		"first_slot":      info.FirstSlot,
		"next_first_slot": info.NextFirstSlot,
		"slots_per_epoch": info.SlotsPerEpoch,
	})
}

// POST /v1/slot
func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Slot *uint64 `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slot == nil {
		writeError(w, http.StatusBadRequest, "slot is required")
		return
	}

	epoch, rotated := s.tracker.Advance(*req.Slot)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slot":    *req.Slot,
		"epoch":   epoch,
		"rotated": rotated,
	})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
