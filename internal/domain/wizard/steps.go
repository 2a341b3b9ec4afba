package wizard

import (
	"strings"

	"snapbook/internal/domain"
)

const (
	FirstStep = 1
	MaxStep   = 5

	// MaxQuantity caps the number of sessions one booking may hold.
	MaxQuantity = 100
)

// CanAdvance reports whether the data collected so far satisfies step's
// required fields. Step 5 is submit readiness and requires every earlier step.
func CanAdvance(step int, d BookingFormData) bool {
	return len(MissingFields(step, d)) == 0
}

// MissingFields names the fields that block step, in form order.
func MissingFields(step int, d BookingFormData) []string {
	var missing []string
	switch step {
	case 1:
		if d.PhotographerID <= 0 {
			missing = append(missing, "photographer_id")
		}
	case 2:
		if d.ServiceID <= 0 {
			missing = append(missing, "service_id")
		}
		if !d.ShootingType.Valid() {
			missing = append(missing, "shooting_type")
		}
		if d.ShootingType == domain.ShootingOutdoor && d.LocationID <= 0 && strings.TrimSpace(d.CustomLocation) == "" {
			missing = append(missing, "location_id")
		}
	case 3:
		if d.BookingDate.IsZero() {
			missing = append(missing, "booking_date")
		}
		if d.AvailabilityID <= 0 {
			missing = append(missing, "availability_id")
		}
	case 4:
		if d.Quantity <= 0 || d.Quantity > MaxQuantity {
			missing = append(missing, "quantity")
		}
		if strings.TrimSpace(d.Concept) == "" {
			missing = append(missing, "concept")
		}
	case MaxStep:
		for s := FirstStep; s < MaxStep; s++ {
			missing = append(missing, MissingFields(s, d)...)
		}
	default:
		missing = append(missing, "step")
	}
	return missing
}

// Draft is a wizard in progress: the collected data and the current step.
type Draft struct {
	ID     string          `json:"draft_id"`
	UserID int64           `json:"user_id"`
	Step   int             `json:"step"`
	Data   BookingFormData `json:"data"`
}

func NewDraft(id string, userID int64) *Draft {
	return &Draft{ID: id, UserID: userID, Step: FirstStep, Data: NewFormData()}
}

// Advance moves to the next step when the current one is complete.
// State is untouched on error.
func (d *Draft) Advance() error {
	if d.Step >= MaxStep {
		return ErrLastStep
	}
	if !CanAdvance(d.Step, d.Data) {
		return ErrStepIncomplete
	}
	d.Step++
	return nil
}

// Retreat moves back one step. Collected data is kept.
func (d *Draft) Retreat() error {
	if d.Step <= FirstStep {
		return ErrFirstStep
	}
	d.Step--
	return nil
}
