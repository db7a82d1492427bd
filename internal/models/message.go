package models

import "github.com/google/uuid"

type Message struct {
	BaseModel
	Content  string    `json:"content" gorm:"type:text;not null"`
	AuthorID uuid.UUID `json:"authorId" gorm:"type:uuid;not null"`
	ThreadID uuid.UUID `json:"threadId" gorm:"type:uuid;not null;index"`
	// ParentMessageID is nil for top-level messages. A reply keeps its
	// ThreadID as well, so it shows up both under its parent and in the
	// thread's flat message list.
	ParentMessageID *uuid.UUID `json:"parentMessageId,omitempty" gorm:"type:uuid;index"`

	Author  User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Replies []Message `json:"replies" gorm:"foreignKey:ParentMessageID"`
}
