// Package schema owns the table set. It lives apart from database so domain
// packages can keep importing database helpers.
package schema

import (
	"fmt"

	"gorm.io/gorm"

	"snapbook/internal/domain"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/booking"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/domain/payment"
	"snapbook/internal/domain/request"
	"snapbook/internal/domain/upload"
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&catalog.PhotoService{},
		&catalog.Location{},
		&catalog.DiscountCode{},
		&availability.Availability{},
		&request.Request{},
		&request.Offer{},
		&booking.Booking{},
		&upload.Upload{},
		&payment.Attempt{},
		&payment.Record{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}
