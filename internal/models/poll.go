package models

import "github.com/google/uuid"

type Poll struct {
	BaseModel
	EventID     uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedByID uuid.UUID `json:"createdById" gorm:"type:uuid;not null"`

	CreatedBy User           `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Questions []PollQuestion `json:"questions" gorm:"foreignKey:PollID"`
	Responses []PollResponse `json:"responses" gorm:"foreignKey:PollID"`
}

type PollQuestion struct {
	BaseModel
	PollID   uuid.UUID `json:"pollId" gorm:"type:uuid;not null;index"`
	Position int       `json:"position" gorm:"not null"`
	Question string    `json:"question" gorm:"type:text;not null"`
	Options  []string  `json:"options" gorm:"serializer:json;type:text;not null"`
}

type PollAnswer struct {
	QuestionIndex     int `json:"questionIndex"`
	ChosenOptionIndex int `json:"chosenOptionIndex"`
}

type PollResponse struct {
	BaseModel
	PollID        uuid.UUID    `json:"pollId" gorm:"type:uuid;not null;index;uniqueIndex:idx_poll_participant"`
	ParticipantID uuid.UUID    `json:"participantId" gorm:"type:uuid;not null;uniqueIndex:idx_poll_participant"`
	Answers       []PollAnswer `json:"answers" gorm:"serializer:json;type:text;not null"`
}
