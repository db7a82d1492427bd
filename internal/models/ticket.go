package models

import "github.com/google/uuid"

type TicketType struct {
	BaseModel
	EventID  uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Amount   float64   `json:"amount" gorm:"not null"`
	Quantity int       `json:"quantity" gorm:"not null"`
	// SoldCount is incremented after each purchase; the capacity gate reads
	// it before inserting the ticket.
	SoldCount int `json:"soldCount" gorm:"not null;default:0"`
}

type Ticket struct {
	BaseModel
	TicketTypeID uuid.UUID `json:"ticketTypeId" gorm:"type:uuid;not null;index;uniqueIndex:idx_type_buyer"`
	EventID      uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	BuyerEmail   string    `json:"buyerEmail" gorm:"type:varchar(255);not null;uniqueIndex:idx_type_buyer"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Address      string    `json:"address" gorm:"type:text;not null"`
}
