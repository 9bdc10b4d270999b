package api

import (
	"context"  // Upstream call context
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // Blank check

	"kodbank/internal/chat"       // Chat client
	"kodbank/internal/middleware" // Claims accessor

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ChatCompleter sends a conversation to the model
type ChatCompleter interface {
	Complete(ctx context.Context, messages []chat.Message) ([]byte, error)
}

// ChatRequest is the dashboard's chat body
type ChatRequest struct {
	Messages []chat.Message `json:"messages"` // Conversation so far
	Input    string         `json:"input"`    // New user message
}

// ChatHandler forwards the conversation to the model and relays its answer
func ChatHandler(client ChatCompleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c)
			return
		}
		if len(req.Messages) == 0 && strings.TrimSpace(req.Input) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messages or input is required"})
			return
		}
		body, err := client.Complete(c.Request.Context(), chat.BuildMessages(req.Messages, req.Input))
		if err != nil {
			if errors.Is(err, chat.ErrTransport) {
				fields := logrus.Fields{"error": err.Error()}
				if claims, ok := middleware.ClaimsFrom(c); ok {
					fields["account_id"] = claims.AccountID
				}
				logrus.WithFields(fields).Error("Chat API Error")
				c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to communicate with AI provider"})
				return
			}
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
