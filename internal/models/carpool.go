package models

import (
	"time"

	"github.com/google/uuid"
)

type Carpool struct {
	BaseModel
	EventID           uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	DriverID          uuid.UUID `json:"driverId" gorm:"type:uuid;not null"`
	DepartureLocation string    `json:"departureLocation" gorm:"type:varchar(255);not null"`
	DepartureTime     time.Time `json:"departureTime" gorm:"not null"`
	Price             float64   `json:"price" gorm:"not null"`
	AvailableSeats    int       `json:"availableSeats" gorm:"not null"`
	// MaxTimeDifferenceMinutes bounds how far from the event start a pickup
	// may be scheduled.
	MaxTimeDifferenceMinutes int `json:"maxTimeDifferenceMinutes" gorm:"not null;default:30"`

	Driver     User   `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Passengers []User `json:"passengers" gorm:"many2many:carpool_passengers"`
}
