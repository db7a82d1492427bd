package models

import "github.com/google/uuid"

const DefaultAlbumName = "Album photos"

type PhotoAlbum struct {
	BaseModel
	EventID uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"type:varchar(255);not null;default:'Album photos'"`
	Photos  []Photo   `json:"photos" gorm:"foreignKey:AlbumID"`
}
