package models

import (
	"time"

	"github.com/google/uuid"
)

type ShoppingItem struct {
	BaseModel
	EventID     uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index;uniqueIndex:idx_event_item_name"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_event_item_name"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	ArrivalTime time.Time `json:"arrivalTime" gorm:"not null"`
	BroughtByID uuid.UUID `json:"broughtById" gorm:"type:uuid;not null"`

	BroughtBy User `json:"broughtBy,omitempty" gorm:"foreignKey:BroughtByID"`
}
