package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	BaseModel
	Name                string     `json:"name" gorm:"type:varchar(255);not null"`
	Description         string     `json:"description" gorm:"type:text;not null;default:''"`
	StartDate           time.Time  `json:"startDate" gorm:"not null"`
	EndDate             time.Time  `json:"endDate" gorm:"not null"`
	Location            string     `json:"location" gorm:"type:varchar(255);not null"`
	CoverPhoto          *string    `json:"coverPhoto,omitempty" gorm:"type:text"`
	IsPrivate           bool       `json:"isPrivate" gorm:"not null;default:false"`
	GroupID             *uuid.UUID `json:"groupId,omitempty" gorm:"type:uuid;index"`
	ShoppingListEnabled bool       `json:"shoppingListEnabled" gorm:"not null;default:false"`
	CarpoolEnabled      bool       `json:"carpoolEnabled" gorm:"not null;default:false"`
	Organizers          []User     `json:"organizers" gorm:"many2many:event_organizers"`
	Participants        []User     `json:"participants" gorm:"many2many:event_participants"`
}
