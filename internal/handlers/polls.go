package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PollsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewPollsHandler(db *gorm.DB, access *services.AccessService) *PollsHandler {
	return &PollsHandler{DB: db, Access: access}
}

type pollQuestionRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type createPollRequest struct {
	EventID   string                `json:"eventId"`
	Title     string                `json:"title"`
	Questions []pollQuestionRequest `json:"questions"`
}

// Create is organizer-only, resolved through the payload's event reference.
func (h *PollsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)

	var req createPollRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	eventID, err := parseUUID(req.EventID)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "eventId", Message: "invalid event id"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "title", Message: "title is required"})
	}
	if len(req.Questions) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "questions", Message: "at least one question is required"})
	}
	for i := range req.Questions {
		req.Questions[i].Question = strings.TrimSpace(req.Questions[i].Question)
		if req.Questions[i].Question == "" {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "questions", Message: "question text is required"})
		}
		if len(req.Questions[i].Options) < 2 {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "questions", Message: "each question needs at least 2 options"})
		}
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}

	isOrganizer, err := h.Access.IsOrganizerOf(eventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isOrganizer {
		return utils.Error(c, fiber.StatusForbidden, "only organizers can create polls")
	}

	poll := models.Poll{
		EventID:     eventID,
		Title:       req.Title,
		CreatedByID: currentUser.ID,
	}
	for i, q := range req.Questions {
		poll.Questions = append(poll.Questions, models.PollQuestion{
			Position: i,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	if err := h.DB.Create(&poll).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating poll")
	}

	logger.InfoWithUser(currentUser.ID.String(), "poll_created", map[string]interface{}{
		"poll_id":  poll.ID.String(),
		"event_id": eventID.String(),
	})

	return utils.JSON(c, fiber.StatusCreated, poll)
}

func (h *PollsHandler) Get(c *fiber.Ctx) error {
	pollID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid poll id")
	}

	var poll models.Poll
	if err := preloadPoll(h.DB).First(&poll, "id = ?", pollID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "poll not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading poll")
	}

	return utils.JSON(c, fiber.StatusOK, poll)
}

func (h *PollsHandler) GetByEvent(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var polls []models.Poll
	if err := preloadPoll(h.DB).
		Where("event_id = ?", eventID).
		Order("created_at").
		Find(&polls).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing polls")
	}

	return utils.JSON(c, fiber.StatusOK, polls)
}

type voteRequest struct {
	Answers []models.PollAnswer `json:"answers"`
}

// Vote is participant-only and rejects a second response from the same
// participant; the first vote is final.
func (h *PollsHandler) Vote(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	pollID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid poll id")
	}

	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	if len(req.Answers) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "answers", Message: "answers are required"})
	}
	for _, answer := range req.Answers {
		if answer.QuestionIndex < 0 || answer.ChosenOptionIndex < 0 {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "answers", Message: "invalid answer index"})
			break
		}
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	var poll models.Poll
	if err := h.DB.First(&poll, "id = ?", pollID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "poll not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading poll")
	}

	isParticipant, err := h.Access.IsParticipantOf(poll.EventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isParticipant {
		return utils.Error(c, fiber.StatusForbidden, "only participants can vote")
	}

	var existing int64
	if err := h.DB.Model(&models.PollResponse{}).
		Where("poll_id = ? AND participant_id = ?", pollID, currentUser.ID).
		Count(&existing).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing vote")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "you have already voted")
	}

	response := models.PollResponse{
		PollID:        pollID,
		ParticipantID: currentUser.ID,
		Answers:       req.Answers,
	}
	if err := h.DB.Create(&response).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusBadRequest, "you have already voted")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed recording vote")
	}

	var updated models.Poll
	if err := preloadPoll(h.DB).First(&updated, "id = ?", pollID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading poll")
	}

	return utils.JSON(c, fiber.StatusOK, updated)
}

func preloadPoll(query *gorm.DB) *gorm.DB {
	return query.
		Preload("CreatedBy").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_questions.position")
		}).
		Preload("Responses")
}
