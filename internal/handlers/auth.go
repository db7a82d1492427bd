package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type registerRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Firstname  string  `json:"firstname"`
	Lastname   string  `json:"lastname"`
	Avatar     *string `json:"avatar"`
	Birthdate  *string `json:"birthdate"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Address    *string `json:"address"`
}

func (r *registerRequest) validate(requirePassword bool) []utils.FieldError {
	var fieldErrors []utils.FieldError
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Firstname = strings.TrimSpace(r.Firstname)
	r.Lastname = strings.TrimSpace(r.Lastname)

	if !isValidEmail(r.Email) {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "email", Message: "invalid email"})
	}
	if requirePassword && len(r.Password) < 6 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if !requirePassword && r.Password != "" && len(r.Password) < 6 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if r.Firstname == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "firstname", Message: "firstname is required"})
	}
	if r.Lastname == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "lastname", Message: "lastname is required"})
	}
	if r.Birthdate != nil {
		if _, err := parseDate(*r.Birthdate); err != nil {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "birthdate", Message: "invalid birthdate"})
		}
	}
	return fieldErrors
}

func (r *registerRequest) toUser() models.User {
	user := models.User{
		Email:      r.Email,
		Firstname:  r.Firstname,
		Lastname:   r.Lastname,
		Avatar:     r.Avatar,
		City:       r.City,
		PostalCode: r.PostalCode,
		Address:    r.Address,
	}
	if r.Birthdate != nil {
		if parsed, err := parseDate(*r.Birthdate); err == nil {
			user.Birthdate = &parsed
		}
	}
	return user
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrors := req.validate(true); len(fieldErrors) > 0 {
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

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	user := req.toUser()
	user.PasswordHash = hash
	if err := h.DB.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusConflict, "a user with this email already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	return utils.JSON(c, fiber.StatusCreated, fiber.Map{
		"user":  user,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !isValidEmail(req.Email) {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "email", Message: "invalid email"})
	}
	if req.Password == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "password", Message: "password is required"})
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	// The same message whether the email is unknown or the password wrong.
	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.Info("user_logged_in", map[string]interface{}{
		"user_id": user.ID.String(),
	})

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"user":  user,
		"token": token,
	})
}
