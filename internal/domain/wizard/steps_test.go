package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapbook/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func completeForm() BookingFormData {
	d := NewFormData()
	d.PhotographerID = 5
	d.ServiceID = 7
	d.ShootingType = domain.ShootingStudio
	d.BookingDate = time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	d.AvailabilityID = 11
	d.Quantity = 2
	d.Concept = "vintage film look"
	return d
}

func TestCanAdvance(t *testing.T) {
	outdoor := completeForm()
	outdoor.ShootingType = domain.ShootingOutdoor

	tests := []struct {
		name string
		step int
		mod  func(*BookingFormData)
		want bool
	}{
		{"step1 ok", 1, nil, true},
		{"step1 no photographer", 1, func(d *BookingFormData) { d.PhotographerID = 0 }, false},
		{"step2 ok studio", 2, nil, true},
		{"step2 missing service", 2, func(d *BookingFormData) { d.ServiceID = 0 }, false},
		{"step2 bad shooting type", 2, func(d *BookingFormData) { d.ShootingType = "aerial" }, false},
		{"step2 outdoor without location", 2, func(d *BookingFormData) { d.ShootingType = domain.ShootingOutdoor }, false},
		{"step2 outdoor with location", 2, func(d *BookingFormData) { d.ShootingType = domain.ShootingOutdoor; d.LocationID = 3 }, true},
		{"step2 outdoor with custom location", 2, func(d *BookingFormData) {
			d.ShootingType = domain.ShootingOutdoor
			d.CustomLocation = "Hoan Kiem lake"
		}, true},
		{"step2 outdoor blank custom location", 2, func(d *BookingFormData) {
			d.ShootingType = domain.ShootingOutdoor
			d.CustomLocation = "   "
		}, false},
		{"step3 ok", 3, nil, true},
		{"step3 no date", 3, func(d *BookingFormData) { d.BookingDate = time.Time{} }, false},
		{"step3 no availability", 3, func(d *BookingFormData) { d.AvailabilityID = 0 }, false},
		{"step4 ok", 4, nil, true},
		{"step4 zero quantity", 4, func(d *BookingFormData) { d.Quantity = 0 }, false},
		{"step4 max quantity", 4, func(d *BookingFormData) { d.Quantity = MaxQuantity }, true},
		{"step4 quantity above max", 4, func(d *BookingFormData) { d.Quantity = MaxQuantity + 1 }, false},
		{"step4 blank concept", 4, func(d *BookingFormData) { d.Concept = " " }, false},
		{"step5 ok", 5, nil, true},
		{"step5 earlier step broken", 5, func(d *BookingFormData) { d.PhotographerID = 0 }, false},
		{"unknown step", 9, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeForm()
			if tt.mod != nil {
				tt.mod(&d)
			}
			assert.Equal(t, tt.want, CanAdvance(tt.step, d))
		})
	}
}

func TestMissingFields_SubmitListsEverything(t *testing.T) {
	got := MissingFields(MaxStep, NewFormData())
	assert.Equal(t, []string{"photographer_id", "service_id", "shooting_type", "booking_date", "availability_id", "concept"}, got)
}

func TestMerge_DisjointPatchesCommute(t *testing.T) {
	a := FormPatch{PhotographerID: ptr(int64(5)), Concept: ptr("soft light")}
	b := FormPatch{ServiceID: ptr(int64(7)), Quantity: ptr(3), DiscountCode: ptr(" summer10 ")}

	ab := NewFormData()
	ab.Merge(a)
	ab.Merge(b)

	ba := NewFormData()
	ba.Merge(b)
	ba.Merge(a)

	both := NewFormData()
	both.Merge(FormPatch{
		PhotographerID: a.PhotographerID,
		Concept:        a.Concept,
		ServiceID:      b.ServiceID,
		Quantity:       b.Quantity,
		DiscountCode:   b.DiscountCode,
	})

	assert.Equal(t, ab, ba)
	assert.Equal(t, ab, both)
	assert.Equal(t, "SUMMER10", ab.DiscountCode)
}

func TestMerge_NilFieldsUntouched(t *testing.T) {
	d := completeForm()
	before := d
	d.Merge(FormPatch{})
	assert.Equal(t, before, d)
}

func TestDraftNavigation(t *testing.T) {
	d := NewDraft("d1", 1)
	assert.ErrorIs(t, d.Advance(), ErrStepIncomplete)
	assert.Equal(t, 1, d.Step)
	assert.ErrorIs(t, d.Retreat(), ErrFirstStep)

	d.Data = completeForm()
	for step := 2; step <= MaxStep; step++ {
		require.NoError(t, d.Advance())
		assert.Equal(t, step, d.Step)
	}
	assert.ErrorIs(t, d.Advance(), ErrLastStep)

	require.NoError(t, d.Retreat())
	require.NoError(t, d.Retreat())
	assert.Equal(t, 3, d.Step)
	assert.Equal(t, completeForm(), d.Data)
}
