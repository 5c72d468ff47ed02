package handlers

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// EventSubscriber upgrades a request into a live event stream for one topic.
type EventSubscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, topic string) error
}

var topicPattern = regexp.MustCompile(`^(all|rates|\d{4}-\d{2})$`)

// RegisterEventRoutes registers the websocket endpoint pushing budget and rate events.
func RegisterEventRoutes(rg *gin.RouterGroup, subscriber EventSubscriber) {
	rg.GET("/events", func(c *gin.Context) {
		subscribeEvents(c, subscriber)
	})
}

// subscribeEvents godoc
// @Summary Subscribe to live updates
// @Description Upgrades to a websocket that receives budget events of one month (YYYY-MM), rate refreshes ("rates") or everything ("all").
// @Tags events
// @Param topic query string false "Topic" default(all)
// @Success 101 "Switching protocols"
// @Failure 400 {object} map[string]string "Invalid topic"
// @Security BearerAuth
// @Router /events [get]
func subscribeEvents(c *gin.Context, subscriber EventSubscriber) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	topic := c.DefaultQuery("topic", "all")
	if !topicPattern.MatchString(topic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic must be all, rates or a month (YYYY-MM)"})
		return
	}

	if err := subscriber.Subscribe(c.Writer, c.Request, topic); err != nil {
		logger.Warn("Websocket subscription ended with error", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}
