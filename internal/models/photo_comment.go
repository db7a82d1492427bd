package models

import "github.com/google/uuid"

type PhotoComment struct {
	BaseModel
	PhotoID  uuid.UUID `json:"photoId" gorm:"type:uuid;not null;index"`
	Content  string    `json:"content" gorm:"type:text;not null"`
	AuthorID uuid.UUID `json:"authorId" gorm:"type:uuid;not null"`

	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}
