package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GroupsHandler struct {
	DB *gorm.DB
}

func NewGroupsHandler(db *gorm.DB) *GroupsHandler {
	return &GroupsHandler{DB: db}
}

type createGroupRequest struct {
	Name                    string           `json:"name"`
	Description             *string          `json:"description"`
	Icon                    *string          `json:"icon"`
	CoverPhoto              *string          `json:"coverPhoto"`
	Type                    *models.GroupType `json:"type"`
	AllowMemberPost         *bool            `json:"allowMemberPost"`
	AllowMemberCreateEvents *bool            `json:"allowMemberCreateEvents"`
	Admins                  []string         `json:"admins"`
	Members                 []string         `json:"members"`
}

// Create persists the group and cascades one discussion thread bound to it.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "name", Message: "name is required"})
	}
	if len(req.Admins) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "admins", Message: "at least one admin is required"})
	}
	if req.Type != nil && !isValidGroupType(*req.Type) {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "type", Message: "invalid group type"})
	}
	adminIDs, err := parseUUIDList(req.Admins)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "admins", Message: "invalid admin id"})
	}
	memberIDs, err := parseUUIDList(req.Members)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "members", Message: "invalid member id"})
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	admins, err := findUsersByID(h.DB, adminIDs)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "admin user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading admins")
	}
	var members []models.User
	if len(memberIDs) > 0 {
		members, err = findUsersByID(h.DB, memberIDs)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "member user not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading members")
		}
	}

	group := models.Group{
		Name:    req.Name,
		Admins:  admins,
		Members: members,
	}
	if req.Description != nil {
		group.Description = strings.TrimSpace(*req.Description)
	}
	group.Icon = req.Icon
	group.CoverPhoto = req.CoverPhoto
	if req.Type != nil {
		group.Type = *req.Type
	} else {
		group.Type = models.GroupTypePublic
	}
	group.AllowMemberPost = req.AllowMemberPost == nil || *req.AllowMemberPost
	group.AllowMemberCreateEvents = req.AllowMemberCreateEvents != nil && *req.AllowMemberCreateEvents

	if err := h.DB.Create(&group).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	thread := models.DiscussionThread{GroupID: &group.ID}
	if err := h.DB.Create(&thread).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group thread")
	}

	if currentUser != nil {
		logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
			"group_id":   group.ID.String(),
			"group_name": group.Name,
		})
	}

	return utils.JSON(c, fiber.StatusCreated, struct {
		models.Group
		DiscussionThreadID string `json:"discussionThreadId"`
	}{group, thread.ID.String()})
}

var groupFilterColumns = map[string]string{
	"name": "name",
	"type": "type",
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	query := applyQueryFilters(h.DB.Model(&models.Group{}), c.Queries(), groupFilterColumns)

	var groups []models.Group
	if err := query.
		Preload("Admins").
		Preload("Members").
		Order("created_at").
		Find(&groups).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}

	return utils.JSON(c, fiber.StatusOK, groups)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var group models.Group
	if err := h.DB.
		Preload("Admins").
		Preload("Members").
		First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "group not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	return utils.JSON(c, fiber.StatusOK, group)
}

type updateGroupRequest struct {
	Name                    *string           `json:"name"`
	Description             *string           `json:"description"`
	Icon                    *string           `json:"icon"`
	CoverPhoto              *string           `json:"coverPhoto"`
	Type                    *models.GroupType `json:"type"`
	AllowMemberPost         *bool             `json:"allowMemberPost"`
	AllowMemberCreateEvents *bool             `json:"allowMemberCreateEvents"`
}

// Update replaces the given fields only; admins and members are not mutable
// through this path.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.CoverPhoto != nil {
		updates["cover_photo"] = *req.CoverPhoto
	}
	if req.Type != nil {
		if !isValidGroupType(*req.Type) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid group type")
		}
		updates["type"] = *req.Type
	}
	if req.AllowMemberPost != nil {
		updates["allow_member_post"] = *req.AllowMemberPost
	}
	if req.AllowMemberCreateEvents != nil {
		updates["allow_member_create_events"] = *req.AllowMemberCreateEvents
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.Group{}).Where("id = ?", groupID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating group")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	var group models.Group
	if err := h.DB.Preload("Admins").Preload("Members").First(&group, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated group")
	}

	return utils.JSON(c, fiber.StatusOK, group)
}

type addGroupMemberRequest struct {
	UserID string `json:"userId"`
}

// AddMember has set-union semantics: adding an existing member changes
// nothing and still succeeds.
func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req addGroupMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "group not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	if err := h.DB.Model(&group).Association("Members").Append(&user); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed adding member")
	}

	var updated models.Group
	if err := h.DB.Preload("Admins").Preload("Members").First(&updated, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated group")
	}

	return utils.JSON(c, fiber.StatusOK, updated)
}

func (h *GroupsHandler) GetEvents(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var events []models.Event
	if err := h.DB.
		Preload("Organizers").
		Preload("Participants").
		Where("group_id = ?", groupID).
		Order("start_date").
		Find(&events).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing group events")
	}

	return utils.JSON(c, fiber.StatusOK, events)
}

func isValidGroupType(t models.GroupType) bool {
	switch t {
	case models.GroupTypePublic, models.GroupTypePrivate, models.GroupTypeSecret:
		return true
	default:
		return false
	}
}
