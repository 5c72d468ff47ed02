package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/budget_engine/internal/core/domain"
	"github.com/SscSPs/budget_engine/internal/core/ports/events"
	"github.com/olahol/melody"
)

const topicKey = "topic"

// TopicAll subscribes a client to every event.
const TopicAll = "all"

// WebsocketHub pushes events to connected websocket clients.
// A client subscribes to one topic: a month (YYYY-MM), "rates" or "all".
type WebsocketHub struct {
	m *melody.Melody
}

var _ events.Publisher = (*WebsocketHub)(nil)

// NewWebsocketHub configures the melody instance.
func NewWebsocketHub(logger *slog.Logger) *WebsocketHub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	// keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		topic, _ := s.Get(topicKey)
		logger.Debug("Websocket client connected", slog.Any("topic", topic))
	})
	m.HandleDisconnect(func(s *melody.Session) {
		topic, _ := s.Get(topicKey)
		logger.Debug("Websocket client disconnected", slog.Any("topic", topic))
	})
	m.HandleError(func(s *melody.Session, err error) {
		logger.Warn("Websocket error", slog.String("error", err.Error()))
	})

	return &WebsocketHub{m: m}
}

// Subscribe upgrades the request and registers the client under topic.
func (h *WebsocketHub) Subscribe(w http.ResponseWriter, r *http.Request, topic string) error {
	if topic == "" {
		topic = TopicAll
	}
	return h.m.HandleRequestWithKeys(w, r, map[string]any{topicKey: topic})
}

// Publish broadcasts event to the clients whose topic matches it.
func (h *WebsocketHub) Publish(ctx context.Context, event domain.Event) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	want := TopicFor(event)
	return h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		topic, ok := s.Get(topicKey)
		return ok && (topic == TopicAll || topic == want)
	})
}

// Close disconnects every client.
func (h *WebsocketHub) Close() error {
	return h.m.Close()
}

// TopicFor returns the topic an event is delivered under.
func TopicFor(event domain.Event) string {
	switch {
	case event.Type == domain.EventRatesRefreshed:
		return "rates"
	case event.Month != "":
		return event.Month
	default:
		return TopicAll
	}
}
