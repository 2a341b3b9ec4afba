package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"snapbook/internal/config"
	"snapbook/internal/database"
	"snapbook/internal/database/schema"
	"snapbook/internal/domain"
	"snapbook/internal/domain/auth"
	"snapbook/internal/domain/availability"
	"snapbook/internal/domain/catalog"
	"snapbook/internal/logger"
)

const (
	demoPassword = "snapbook123"
	calendarDays = 14
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logger.New(cfg.Log)

	db, err := database.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := schema.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		users, err := seedUsers(tx)
		if err != nil {
			return err
		}
		if err := seedLocations(tx); err != nil {
			return err
		}
		if err := seedDiscounts(tx); err != nil {
			return err
		}
		for _, u := range users {
			if u.Role != domain.RolePhotographer {
				continue
			}
			if err := seedServices(tx, u.ID); err != nil {
				return err
			}
			if err := seedCalendar(tx, u.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.WithField("password", demoPassword).Info("seed completed")
}

func seedUsers(tx *gorm.DB) ([]domain.User, error) {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}
	users := []domain.User{
		{Email: "admin@snapbook.vn", Role: domain.RoleAdmin, Name: "Admin"},
		{Email: "linh@snapbook.vn", Role: domain.RolePhotographer, Name: "Linh Nguyen", Province: "Ho Chi Minh", Bio: "Portraits and couples."},
		{Email: "minh@snapbook.vn", Role: domain.RolePhotographer, Name: "Minh Tran", Province: "Ha Noi", Bio: "Events and graduation shoots."},
		{Email: "an@example.com", Role: domain.RoleCustomer, Name: "An Pham", Phone: "0901234567"},
		{Email: "thao@example.com", Role: domain.RoleCustomer, Name: "Thao Le", Phone: "0912345678"},
	}
	for i := range users {
		users[i].PasswordHash = hash
		if err := tx.Where(domain.User{Email: users[i].Email}).FirstOrCreate(&users[i]).Error; err != nil {
			return nil, fmt.Errorf("user %s: %w", users[i].Email, err)
		}
	}
	return users, nil
}

func seedLocations(tx *gorm.DB) error {
	locations := []catalog.Location{
		{Name: "Nha Tho Duc Ba", Province: "Ho Chi Minh", Address: "01 Cong xa Paris, Ben Nghe"},
		{Name: "Thao Cam Vien", Province: "Ho Chi Minh", Address: "2B Nguyen Binh Khiem"},
		{Name: "Ho Hoan Kiem", Province: "Ha Noi", Address: "Hang Trong, Hoan Kiem"},
	}
	for i := range locations {
		if err := tx.Where(catalog.Location{Name: locations[i].Name}).FirstOrCreate(&locations[i]).Error; err != nil {
			return fmt.Errorf("location %s: %w", locations[i].Name, err)
		}
	}
	return nil
}

func seedDiscounts(tx *gorm.DB) error {
	expires := time.Now().AddDate(0, 3, 0)
	codes := []catalog.DiscountCode{
		{Code: "WELCOME10", Percent: 10, Active: true, ExpiresAt: &expires, MaxUsage: 100},
		{Code: "GRAD20", Percent: 20, Active: true},
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&codes).Error
}

func seedServices(tx *gorm.DB, photographerID int64) error {
	var n int64
	if err := tx.Model(&catalog.PhotoService{}).Where("photographer_id = ?", photographerID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	services := []catalog.PhotoService{
		{PhotographerID: photographerID, Name: "Portrait session", Price: 1000000, DurationMinutes: 60, Active: true},
		{PhotographerID: photographerID, Name: "Couple outdoor", Price: 2500000, DurationMinutes: 120, Active: true},
		{PhotographerID: photographerID, Name: "Graduation group", Price: 500000, DurationMinutes: 90, Active: true,
			Description: "Priced per person."},
	}
	return tx.Create(&services).Error
}

func seedCalendar(tx *gorm.DB, photographerID int64) error {
	today := availability.DateOnly(time.Now().UTC())
	for i := 1; i <= calendarDays; i++ {
		if i%3 == 0 {
			continue
		}
		day := availability.Availability{
			PhotographerID: photographerID,
			AvailableDate:  today.AddDate(0, 0, i),
			Status:         availability.StatusAvailable,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&day).Error; err != nil {
			return fmt.Errorf("availability %s: %w", day.AvailableDate.Format(time.DateOnly), err)
		}
	}
	return nil
}
