package bonus

import (
	"github.com/glowline/backend/internal/models"
)

// State is the bonus lifecycle of one team purchase within one calendar
// month. Transitions run strictly forward:
//
//	NoPreview -> Previewed -> Finalized -> Approved -> Paid
//
// Recomputing a preview while Previewed replaces the rows in place and is not
// a transition.
type State string

const (
	StateNoPreview State = "no_preview"
	StatePreviewed State = "previewed"
	StateFinalized State = "finalized"
	StateApproved  State = "approved"
	StatePaid      State = "paid"
)

var stateRank = map[State]int{
	StateNoPreview: 0,
	StatePreviewed: 1,
	StateFinalized: 2,
	StateApproved:  3,
	StatePaid:      4,
}

// CanTransitionTo reports whether next is the immediate forward step from s
func (s State) CanTransitionTo(next State) bool {
	return stateRank[next] == stateRank[s]+1
}

// deriveState reads the lifecycle position out of the stored rows. Final rows
// are authoritative once they exist; preview rows only distinguish NoPreview
// from Previewed.
func deriveState(previews []models.BonusPreview, finals []models.MonthlyBonus) State {
	if len(finals) == 0 {
		if len(previews) == 0 {
			return StateNoPreview
		}
		return StatePreviewed
	}

	allApproved := true
	allPaid := true
	for _, record := range finals {
		if record.CalculationStatus != models.BonusCalculationStatusApproved {
			allApproved = false
		}
		if record.PaymentStatus != models.BonusPaymentStatusPaid {
			allPaid = false
		}
	}
	if allApproved && allPaid {
		return StatePaid
	}
	if allApproved {
		return StateApproved
	}
	return StateFinalized
}
