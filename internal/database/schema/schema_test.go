package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapbook/internal/database"
)

func TestMigrate_CreatesEveryTable(t *testing.T) {
	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	// idempotent
	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "services", "locations", "discount_codes", "availabilities",
		"requests", "request_offers", "bookings", "uploads",
		"payment_attempts", "payment_records",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
