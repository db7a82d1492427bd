package models

import "time"

type User struct {
	BaseModel
	Email string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	// PasswordHash is empty for invitee-only profiles created without a
	// password; such accounts cannot log in.
	PasswordHash string     `json:"-" gorm:"type:text"`
	Firstname    string     `json:"firstname" gorm:"type:varchar(100);not null"`
	Lastname     string     `json:"lastname" gorm:"type:varchar(100);not null"`
	Avatar       *string    `json:"avatar,omitempty" gorm:"type:text"`
	Birthdate    *time.Time `json:"birthdate,omitempty"`
	City         *string    `json:"city,omitempty" gorm:"type:varchar(100)"`
	PostalCode   *string    `json:"postalCode,omitempty" gorm:"type:varchar(20)"`
	Address      *string    `json:"address,omitempty" gorm:"type:text"`
}
