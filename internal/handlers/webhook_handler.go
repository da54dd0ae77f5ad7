package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glowline/backend/internal/jobs"
	"github.com/glowline/backend/internal/utils"
)

// WebhookHandler receives events from the storefront service
type WebhookHandler struct {
	previewJob *jobs.BonusPreviewJob
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(previewJob *jobs.BonusPreviewJob) *WebhookHandler {
	return &WebhookHandler{previewJob: previewJob}
}

// TeamPurchaseCompletedPayload is the storefront's completion event
type TeamPurchaseCompletedPayload struct {
	TeamPurchaseID uuid.UUID `json:"team_purchase_id" binding:"required"`
	Event          string    `json:"event"`
}

// TeamPurchaseCompleted enqueues a bonus preview computation when the
// storefront reports a purchase as completed
func (h *WebhookHandler) TeamPurchaseCompleted(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader("X-Glowline-Signature")
	secret := os.Getenv("WEBHOOK_SECRET")
	if secret != "" && !utils.VerifyWebhookSignature(string(body), signature, secret) {
		log.Printf("Rejected webhook with invalid signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload TeamPurchaseCompletedPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.TeamPurchaseID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	jobID, err := h.previewJob.Enqueue(payload.TeamPurchaseID)
	if err != nil {
		log.Printf("Failed to enqueue bonus preview for purchase %s: %v", payload.TeamPurchaseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue bonus preview"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"job_id": jobID,
	})
}
