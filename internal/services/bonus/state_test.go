package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glowline/backend/internal/models"
)

func TestStateTransitionsRunForwardOnly(t *testing.T) {
	assert.True(t, StateNoPreview.CanTransitionTo(StatePreviewed))
	assert.True(t, StatePreviewed.CanTransitionTo(StateFinalized))
	assert.True(t, StateFinalized.CanTransitionTo(StateApproved))
	assert.True(t, StateApproved.CanTransitionTo(StatePaid))

	assert.False(t, StatePaid.CanTransitionTo(StateApproved))
	assert.False(t, StateNoPreview.CanTransitionTo(StateFinalized))
	assert.False(t, StateFinalized.CanTransitionTo(StateFinalized))
}

func TestDeriveState(t *testing.T) {
	assert.Equal(t, StateNoPreview, deriveState(nil, nil))

	previews := []models.BonusPreview{{}}
	assert.Equal(t, StatePreviewed, deriveState(previews, nil))

	calculated := models.MonthlyBonus{
		CalculationStatus: models.BonusCalculationStatusCalculated,
		PaymentStatus:     models.BonusPaymentStatusPending,
	}
	approved := models.MonthlyBonus{
		CalculationStatus: models.BonusCalculationStatusApproved,
		PaymentStatus:     models.BonusPaymentStatusPending,
	}
	paid := models.MonthlyBonus{
		CalculationStatus: models.BonusCalculationStatusApproved,
		PaymentStatus:     models.BonusPaymentStatusPaid,
	}

	assert.Equal(t, StateFinalized, deriveState(previews, []models.MonthlyBonus{calculated}))
	// a mixed batch is still only finalized
	assert.Equal(t, StateFinalized, deriveState(nil, []models.MonthlyBonus{calculated, approved}))
	assert.Equal(t, StateApproved, deriveState(nil, []models.MonthlyBonus{approved, approved}))
	assert.Equal(t, StateApproved, deriveState(nil, []models.MonthlyBonus{approved, paid}))
	assert.Equal(t, StatePaid, deriveState(nil, []models.MonthlyBonus{paid, paid}))
}
