package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glowline/backend/internal/models"
	"github.com/glowline/backend/internal/repository"
	"github.com/glowline/backend/internal/services/tiers"
	"github.com/glowline/backend/internal/services/turnover"
)

// DealerHandler serves dealer-facing tier and turnover queries
type DealerHandler struct {
	tiers    *tiers.Service
	turnover *turnover.Service
}

// NewDealerHandler creates a new dealer handler
func NewDealerHandler(tierSvc *tiers.Service, turnoverSvc *turnover.Service) *DealerHandler {
	return &DealerHandler{tiers: tierSvc, turnover: turnoverSvc}
}

// GetTierProgress returns the dealer's current tier and progress to the next
func (h *DealerHandler) GetTierProgress(c *gin.Context) {
	dealerID, ok := parseDealerID(c)
	if !ok {
		return
	}
	period := monthParam(c)

	total, err := h.turnover.TotalTurnover(c.Request.Context(), dealerID, period)
	if err != nil {
		respondDealerError(c, err)
		return
	}

	progress, err := h.tiers.NextTier(c.Request.Context(), total.TotalTurnover)
	if err != nil {
		respondDealerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dealer_id":      dealerID,
		"bonus_month":    period,
		"total_turnover": total.TotalTurnover,
		"truncated":      total.Truncated,
		"progress":       progress,
	})
}

// GetTurnover returns the dealer's personal, team and total turnover
func (h *DealerHandler) GetTurnover(c *gin.Context) {
	dealerID, ok := parseDealerID(c)
	if !ok {
		return
	}
	period := monthParam(c)

	total, err := h.turnover.TotalTurnover(c.Request.Context(), dealerID, period)
	if err != nil {
		respondDealerError(c, err)
		return
	}

	c.JSON(http.StatusOK, total)
}

func parseDealerID(c *gin.Context) (uuid.UUID, bool) {
	dealerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dealer ID"})
		return uuid.Nil, false
	}
	return dealerID, true
}

// monthParam reads the ?month=YYYY-MM query parameter, defaulting to the
// current month
func monthParam(c *gin.Context) string {
	if month := c.Query("month"); month != "" {
		if _, err := time.Parse("2006-01", month); err == nil {
			return month
		}
	}
	return models.BonusMonthOf(time.Now())
}

func respondDealerError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dealer not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dealer data"})
}
