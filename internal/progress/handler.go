package progress

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Authorizer resolves the token of a websocket request to a user allowed
// to follow jobID. Errors wrapping ErrUnauthorized or ErrForbidden map to
// 401 and 403, anything else to 404.
type Authorizer func(ctx context.Context, token, jobID string) (userID string, err error)

type Handler struct {
	hub            *Hub
	authorize      Authorizer
	originPatterns []string
}

func NewHandler(hub *Hub, authorize Authorizer, originPatterns []string) *Handler {
	return &Handler{hub: hub, authorize: authorize, originPatterns: originPatterns}
}

// ServeHTTP upgrades GET /ws/jobs/{jobId}?token=... to a progress stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	token := r.URL.Query().Get("token")

	userID, err := h.authorize(r.Context(), token, jobID)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	default:
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, userID, jobID, uuid.New().String())
	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
