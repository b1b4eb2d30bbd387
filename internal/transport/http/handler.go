package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"vn.io.terango/notifier/internal/application"
	"vn.io.terango/notifier/internal/domain"
)

// ConnectionStatus reports the bridge's current connectivity. The bridge
// implements it; handlers only read it.
type ConnectionStatus interface {
	Connected() bool
}

// Handler holds all HTTP handler methods.
type Handler struct {
	feed   *application.Feed
	hub    *Hub
	status ConnectionStatus
}

// NewHandler creates a new Handler.
func NewHandler(feed *application.Feed, hub *Hub, status ConnectionStatus) *Handler {
	return &Handler{feed: feed, hub: hub, status: status}
}

// --- REST Handlers ---

// ListNotifications GET /notifications
func (h *Handler) ListNotifications(c echo.Context) error {
	filter := domain.FeedFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if r := c.QueryParam("is_read"); r != "" {
		isRead := r == "true"
		filter.IsRead = &isRead
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":   h.feed.List(filter),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetUnreadCount GET /notifications/unread-count
func (h *Handler) GetUnreadCount(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": h.feed.UnreadCount()})
}

// MarkRead PATCH /notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}
	h.feed.MarkRead(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all
func (h *Handler) MarkAllRead(c echo.Context) error {
	h.feed.MarkAllRead(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]int{"unread": h.feed.UnreadCount()})
}

// ClearAll DELETE /notifications
func (h *Handler) ClearAll(c echo.Context) error {
	h.feed.ClearAll(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// --- SSE Handler ---

// Stream GET /notifications/stream — SSE endpoint
func (h *Handler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable Nginx/APISIX buffering

	sendCh := make(chan []byte, 32)
	client := h.hub.Register(sendCh)
	defer h.hub.Unregister(client)

	fmt.Fprintf(w, "event: connected\ndata: {\"connected\":%t}\n\n", h.status.Connected())
	w.Flush()

	log.Info().Msg("SSE stream opened")

	ctx := c.Request().Context()
	for {
		select {
		case msg, ok := <-sendCh:
			if !ok {
				return nil
			}
			if _, err := w.Write(msg); err != nil {
				return nil
			}
			w.Flush()

		case <-ctx.Done():
			log.Info().Msg("SSE stream closed by client")
			return nil
		}
	}
}

// --- Healthcheck ---

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"connected":   h.status.Connected(),
		"sse_clients": h.hub.ConnectedCount(),
	})
}

// --- Helpers ---

func parseIntQuery(c echo.Context, key string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
