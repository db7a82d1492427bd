package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrThreadTarget is returned when a thread is not bound to exactly one of
// a group or an event.
var ErrThreadTarget = errors.New("a discussion thread must reference a group or an event, not both")

type DiscussionThread struct {
	BaseModel
	GroupID *uuid.UUID `json:"groupId,omitempty" gorm:"type:uuid;index"`
	EventID *uuid.UUID `json:"eventId,omitempty" gorm:"type:uuid;index"`
	// Messages is the thread's flat list: top-level messages and replies
	// alike, in creation order.
	Messages []Message `json:"messages" gorm:"foreignKey:ThreadID"`
}

// BeforeSave enforces the exactly-one-of constraint at the persistence
// layer, independently of the request validation that checks the same thing.
func (t *DiscussionThread) BeforeSave(tx *gorm.DB) error {
	hasGroup := t.GroupID != nil && *t.GroupID != uuid.Nil
	hasEvent := t.EventID != nil && *t.EventID != uuid.Nil
	if hasGroup == hasEvent {
		return ErrThreadTarget
	}
	return nil
}
