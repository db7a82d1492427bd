package models

import "github.com/google/uuid"

type Photo struct {
	BaseModel
	AlbumID    uuid.UUID `json:"albumId" gorm:"type:uuid;not null;index"`
	URL        string    `json:"url" gorm:"type:text;not null"`
	PostedByID uuid.UUID `json:"postedById" gorm:"type:uuid;not null"`

	PostedBy User           `json:"postedBy,omitempty" gorm:"foreignKey:PostedByID"`
	Comments []PhotoComment `json:"comments" gorm:"foreignKey:PhotoID"`
}
