package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameDay_AcrossOffsets(t *testing.T) {
	stored := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
	hcm := time.FixedZone("ICT", 7*3600)
	la := time.FixedZone("PST", -8*3600)

	cases := []struct {
		name     string
		selected time.Time
		want     bool
	}{
		{"utc midnight", time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), true},
		{"late evening east of utc", time.Date(2026, 11, 3, 23, 30, 0, 0, hcm), true},
		{"early morning east of utc", time.Date(2026, 11, 3, 0, 15, 0, 0, hcm), true},
		{"west of utc same local day", time.Date(2026, 11, 3, 20, 0, 0, 0, la), true},
		{"next day", time.Date(2026, 11, 4, 0, 0, 0, 0, hcm), false},
		{"previous day", time.Date(2026, 11, 2, 23, 59, 0, 0, la), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SameDay(stored, tc.selected))
		})
	}
}

func TestSameDay_StoredInOtherZone(t *testing.T) {
	// a driver may hand the stored UTC midnight back in local time
	stored := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC).In(time.FixedZone("PST", -8*3600))
	assert.True(t, SameDay(stored, time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)))
}

func TestFindByDate(t *testing.T) {
	list := []Availability{
		{ID: 1, AvailableDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, AvailableDate: time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)},
	}

	a, ok := FindByDate(list, time.Date(2026, 11, 3, 22, 0, 0, 0, time.FixedZone("ICT", 7*3600)))
	assert.True(t, ok)
	assert.Equal(t, int64(2), a.ID)

	_, ok = FindByDate(list, time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 11, 3, 23, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2026, time.December)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-11-03")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-11-03T23:30:00+07:00")
	assert.NoError(t, err)
	assert.Equal(t, 3, d.Day())

	_, err = ParseDate("03/11/2026")
	assert.Error(t, err)
}
