package devorigin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/chat"
)

// NewRouter mounts the origin endpoints. When token is set every request
// must carry it as a bearer token.
func NewRouter(svc *Service, hub *Hub, token string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if token != "" {
			r.Use(bearerAuth(token))
		}
		r.Get("/chatroom-list", roomListHandler(svc))
		r.Get("/message", messagesHandler(svc))
		r.Post("/message", postMessageHandler(svc, hub))
		r.Handle("/socket", hub)
	})
	return r
}

func roomListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := r.URL.Query().Get("campaignId")
		if campaignID == "" {
			writeError(w, http.StatusBadRequest, "campaignId is required")
			return
		}
		list, err := svc.RoomList(campaignID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func messagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		roomID := q.Get("roomId")
		if roomID == "" {
			writeError(w, http.StatusBadRequest, "roomId is required")
			return
		}
		pageIndex, err := intParam(q.Get("pageIndex"), 1)
		if err != nil {
			writeError(w, http.StatusBadRequest, "pageIndex must be a positive integer")
			return
		}
		pageSize, err := intParam(q.Get("pageSize"), 10)
		if err != nil {
			writeError(w, http.StatusBadRequest, "pageSize must be a positive integer")
			return
		}
		msgs, err := svc.Messages(roomID, pageIndex, pageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// postMessageHandler lets scripts play the customer side of a room.
func postMessageHandler(svc *Service, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out chat.Outbound
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&out); err != nil {
			writeError(w, http.StatusBadRequest, "malformed message")
			return
		}
		push, err := svc.Ingest(out)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		hub.Broadcast(push)
		writeJSON(w, http.StatusCreated, push)
	}
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
