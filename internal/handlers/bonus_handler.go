package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glowline/backend/internal/repository"
	"github.com/glowline/backend/internal/services/bonus"
)

// BonusHandler handles the admin bonus lifecycle for team purchases
type BonusHandler struct {
	engine *bonus.Service
}

// NewBonusHandler creates a new bonus handler
func NewBonusHandler(engine *bonus.Service) *BonusHandler {
	return &BonusHandler{engine: engine}
}

// PreviewBonuses recomputes and returns the bonus preview for a purchase
func (h *BonusHandler) PreviewBonuses(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}

	result, err := h.engine.ComputePreview(c.Request.Context(), purchaseID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinalizeBonuses freezes the preview into immutable monthly bonus records
func (h *BonusHandler) FinalizeBonuses(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	result, err := h.engine.FinalizeBonuses(c.Request.Context(), purchaseID, actorID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ApproveBonuses approves finalized bonus records for payout
func (h *BonusHandler) ApproveBonuses(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}
	actorID, ok := actorFromContext(c)
	if !ok {
		return
	}

	result, err := h.engine.ApproveBonuses(c.Request.Context(), purchaseID, actorID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PayoutBonuses marks approved records paid and credits dealer balances
func (h *BonusHandler) PayoutBonuses(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}

	result, err := h.engine.PayoutBonuses(c.Request.Context(), purchaseID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	// Partial transfer failures still return 200; the transfer section of the
	// body carries per-record errors and the retry job will pick them up.
	c.JSON(http.StatusOK, result)
}

// RetryTransfer re-drives balance credits for paid but untransferred records
func (h *BonusHandler) RetryTransfer(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}

	result, err := h.engine.RetryBalanceTransfer(c.Request.Context(), purchaseID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats returns the combined bonus dashboard for a purchase
func (h *BonusHandler) GetStats(c *gin.Context) {
	purchaseID, ok := parsePurchaseID(c)
	if !ok {
		return
	}

	stats, err := h.engine.GetCombinedStats(c.Request.Context(), purchaseID)
	if err != nil {
		respondBonusError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parsePurchaseID(c *gin.Context) (uuid.UUID, bool) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team purchase ID"})
		return uuid.Nil, false
	}
	return purchaseID, true
}

func actorFromContext(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	actorID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return uuid.Nil, false
	}
	return actorID, true
}

// respondBonusError maps engine errors onto HTTP responses
func respondBonusError(c *gin.Context, err error) {
	if readiness, ok := bonus.AsReadinessError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "purchase not ready for bonus calculation",
			"reasons": readiness.Reasons,
		})
		return
	}
	if conflict, ok := bonus.AsConflictError(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Message,
			"operation": conflict.Operation,
			"state":     conflict.State,
		})
		return
	}
	if errors.Is(err, bonus.ErrNothingToPay) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "team purchase not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process bonus operation"})
}
