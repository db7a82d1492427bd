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

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

// Create accepts an optional password: profiles created without one (for
// example invitee-only accounts) carry no credential and cannot log in.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrors := req.validate(false); len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	var existing models.User
	err := h.DB.First(&existing, "email = ?", req.Email).Error
	if err == nil {
		return utils.Error(c, fiber.StatusConflict, "a user with this email already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking email")
	}

	user := req.toUser()
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
		}
		user.PasswordHash = hash
	}

	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusConflict, "a user with this email already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	return utils.JSON(c, fiber.StatusCreated, user)
}

var userFilterColumns = map[string]string{
	"email":      "email",
	"firstname":  "firstname",
	"lastname":   "lastname",
	"city":       "city",
	"postalCode": "postal_code",
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	query := applyQueryFilters(h.DB.Model(&models.User{}), c.Queries(), userFilterColumns)

	var users []models.User
	if err := query.Order("created_at").Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing users")
	}

	return utils.JSON(c, fiber.StatusOK, users)
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	return utils.JSON(c, fiber.StatusOK, user)
}

type updateUserRequest struct {
	Firstname  *string `json:"firstname"`
	Lastname   *string `json:"lastname"`
	Avatar     *string `json:"avatar"`
	Birthdate  *string `json:"birthdate"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Address    *string `json:"address"`
}

// Update never touches email or password; those fields are not part of the
// accepted set on this path.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Firstname != nil {
		value := strings.TrimSpace(*req.Firstname)
		if value == "" {
			return utils.Error(c, fiber.StatusBadRequest, "firstname cannot be empty")
		}
		updates["firstname"] = value
	}
	if req.Lastname != nil {
		value := strings.TrimSpace(*req.Lastname)
		if value == "" {
			return utils.Error(c, fiber.StatusBadRequest, "lastname cannot be empty")
		}
		updates["lastname"] = value
	}
	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if req.Birthdate != nil {
		parsed, err := parseDate(*req.Birthdate)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid birthdate")
		}
		updates["birthdate"] = parsed
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.PostalCode != nil {
		updates["postal_code"] = strings.TrimSpace(*req.PostalCode)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching updated user")
	}

	return utils.JSON(c, fiber.StatusOK, user)
}

// Delete hard-deletes the profile. Any authenticated caller may delete any
// profile; there is no self-or-admin restriction on this path.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed fetching user")
	}

	if err := h.DB.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting user")
	}

	if currentUser != nil {
		logger.InfoWithUser(currentUser.ID.String(), "user_deleted", map[string]interface{}{
			"deleted_user_id": userID.String(),
		})
	}

	return utils.JSON(c, fiber.StatusOK, user)
}
