package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

const (
	defaultGamesLimit = 20
	maxGamesLimit     = 100
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.VersionHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.RoomListHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/games", s.RecentGamesHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/ws", s.WebSocketHandler)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// websocket upgrades skip the preflight handling
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("sketchroom v" + s.opts.Version + "\n"))
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now().UnixMilli()
	writeResponse(w, start, http.StatusOK, map[string]any{
		"status":   "ok",
		"rooms":    s.registry.Len(),
		"sessions": s.SessionCount(),
		"uptime_s": int64(time.Since(s.startedAt).Seconds()),
	})
}

// RoomListHandler lists rooms that can still be joined.
func (s *Server) RoomListHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now().UnixMilli()
	writeResponse(w, start, http.StatusOK, internal.GameRoomListResp{RoomList: s.registry.List()})
}

func (s *Server) RecentGamesHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now().UnixMilli()

	if s.history == nil {
		writeResponse(w, start, http.StatusNotFound, "Game history is not enabled")
		return
	}

	limit := defaultGamesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeResponse(w, start, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxGamesLimit)
	}

	games, err := s.history.RecentGames(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("[RecentGamesHandler] history query failed")
		writeResponse(w, start, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeResponse(w, start, http.StatusOK, games)
}

// writeResponse sends data in the timed Response envelope.
func writeResponse(w http.ResponseWriter, start int64, status int, data any) {
	end := time.Now().UnixMilli()
	resp := internal.Response{
		StatusCode:    status,
		RespStartTime: start,
		RespEndTime:   end,
		NetRespTime:   end - start,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("[writeResponse] encoding response")
	}
}
