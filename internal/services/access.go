package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessService answers the per-relation capability questions handlers ask
// before allowing an action. Each check is a single join-table lookup.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

func (a *AccessService) IsOrganizerOf(eventID, userID uuid.UUID) (bool, error) {
	return a.inJoinTable("event_organizers", "event_id", eventID, userID)
}

func (a *AccessService) IsParticipantOf(eventID, userID uuid.UUID) (bool, error) {
	return a.inJoinTable("event_participants", "event_id", eventID, userID)
}

// CanPostPhotos holds for event participants and organizers alike.
func (a *AccessService) CanPostPhotos(eventID, userID uuid.UUID) (bool, error) {
	participant, err := a.IsParticipantOf(eventID, userID)
	if err != nil {
		return false, err
	}
	if participant {
		return true, nil
	}
	return a.IsOrganizerOf(eventID, userID)
}

func (a *AccessService) IsCarpoolPassenger(carpoolID, userID uuid.UUID) (bool, error) {
	return a.inJoinTable("carpool_passengers", "carpool_id", carpoolID, userID)
}

func (a *AccessService) inJoinTable(table, ownerColumn string, ownerID, userID uuid.UUID) (bool, error) {
	var count int64
	err := a.DB.Table(table).
		Where(ownerColumn+" = ? AND user_id = ?", ownerID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
