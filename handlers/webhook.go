package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"talkbid/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VideoIngestor consumes normalized provider deliveries.
type VideoIngestor interface {
	Ingest(ctx context.Context, payload models.VideoWebhookPayload) (*models.CallEvent, error)
}

type WebhookHandler struct {
	svc    VideoIngestor
	secret string
	logger *zap.Logger
}

// NewWebhookHandler builds the video webhook handler. secret is the HMAC
// signing key shared with the provider; empty disables verification.
func NewWebhookHandler(svc VideoIngestor, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, logger: logger}
}

// VideoWebhookHandler receives one provider delivery. Internal processing
// failures are logged and still acked with 200, so the provider's retry
// machinery never compounds an outage on our side. The only rejection is a
// bad signature, which cannot be a genuine provider delivery.
func (h *WebhookHandler) VideoWebhookHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if h.secret != "" && !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return
	}

	var payload models.VideoWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("undecodable webhook payload", zap.Error(err), zap.ByteString("body", body))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.svc.Ingest(c.Request.Context(), payload); err != nil {
		h.logger.Error("webhook ingestion failed",
			zap.String("type", payload.Type),
			zap.String("roomName", payload.RoomName),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal(bytes.ToLower([]byte(signature)), []byte(expected))
}
