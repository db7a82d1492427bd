package services

import (
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Event{},
		&models.Carpool{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func createAccessTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		Firstname: "Access",
		Lastname:  "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	return user
}

func TestAccessService_EventRelations(t *testing.T) {
	db := setupAccessTestDB(t)
	service := NewAccessService(db)

	organizer := createAccessTestUser(t, db, "organizer@test.com")
	participant := createAccessTestUser(t, db, "participant@test.com")
	stranger := createAccessTestUser(t, db, "stranger@test.com")

	event := &models.Event{
		Name:         "Board Game Night",
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(28 * time.Hour),
		Location:     "Community Hall",
		Organizers:   []models.User{*organizer},
		Participants: []models.User{*participant},
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed creating event: %v", err)
	}

	checks := []struct {
		name string
		got  func() (bool, error)
		want bool
	}{
		{"organizer is organizer", func() (bool, error) { return service.IsOrganizerOf(event.ID, organizer.ID) }, true},
		{"participant is not organizer", func() (bool, error) { return service.IsOrganizerOf(event.ID, participant.ID) }, false},
		{"participant is participant", func() (bool, error) { return service.IsParticipantOf(event.ID, participant.ID) }, true},
		{"organizer is not participant", func() (bool, error) { return service.IsParticipantOf(event.ID, organizer.ID) }, false},
		{"organizer can post photos", func() (bool, error) { return service.CanPostPhotos(event.ID, organizer.ID) }, true},
		{"participant can post photos", func() (bool, error) { return service.CanPostPhotos(event.ID, participant.ID) }, true},
		{"stranger cannot post photos", func() (bool, error) { return service.CanPostPhotos(event.ID, stranger.ID) }, false},
	}

	for _, check := range checks {
		t.Run(check.name, func(t *testing.T) {
			got, err := check.got()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != check.want {
				t.Fatalf("got %v, want %v", got, check.want)
			}
		})
	}
}

func TestAccessService_CarpoolPassengers(t *testing.T) {
	db := setupAccessTestDB(t)
	service := NewAccessService(db)

	driver := createAccessTestUser(t, db, "driver@test.com")
	passenger := createAccessTestUser(t, db, "passenger@test.com")

	event := &models.Event{
		Name:      "Festival",
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(48 * time.Hour),
		Location:  "Fairgrounds",
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed creating event: %v", err)
	}

	carpool := &models.Carpool{
		EventID:           event.ID,
		DriverID:          driver.ID,
		DepartureLocation: "Main Square",
		DepartureTime:     time.Now().Add(23 * time.Hour),
		AvailableSeats:    2,
		Passengers:        []models.User{*passenger},
	}
	if err := db.Create(carpool).Error; err != nil {
		t.Fatalf("failed creating carpool: %v", err)
	}

	if got, err := service.IsCarpoolPassenger(carpool.ID, passenger.ID); err != nil || !got {
		t.Fatalf("expected passenger check to hold, got %v err %v", got, err)
	}
	if got, err := service.IsCarpoolPassenger(carpool.ID, driver.ID); err != nil || got {
		t.Fatalf("expected driver not to be a passenger, got %v err %v", got, err)
	}
}
