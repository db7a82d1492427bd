package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/internal/storage"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PhotoAlbumsHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
	Access  *services.AccessService
}

func NewPhotoAlbumsHandler(db *gorm.DB, storageClient *storage.MinIOClient, access *services.AccessService) *PhotoAlbumsHandler {
	return &PhotoAlbumsHandler{DB: db, Storage: storageClient, Access: access}
}

type createAlbumRequest struct {
	EventID string  `json:"eventId"`
	Name    *string `json:"name"`
}

// Create is the explicit album path; event creation also cascades an album.
func (h *PhotoAlbumsHandler) Create(c *fiber.Ctx) error {
	var req createAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	eventID, err := parseUUID(req.EventID)
	if err != nil {
		return utils.ValidationError(c, []utils.FieldError{{Field: "eventId", Message: "invalid event id"}})
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}

	album := models.PhotoAlbum{EventID: eventID, Name: models.DefaultAlbumName}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		album.Name = strings.TrimSpace(*req.Name)
	}
	if err := h.DB.Create(&album).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating album")
	}

	return utils.JSON(c, fiber.StatusCreated, album)
}

func (h *PhotoAlbumsHandler) Get(c *fiber.Ctx) error {
	albumID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid album id")
	}

	var album models.PhotoAlbum
	if err := h.DB.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("photos.created_at")
		}).
		Preload("Photos.PostedBy").
		Preload("Photos.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("photo_comments.created_at")
		}).
		Preload("Photos.Comments.Author").
		First(&album, "id = ?", albumID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "album not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading album")
	}

	return utils.JSON(c, fiber.StatusOK, album)
}

func (h *PhotoAlbumsHandler) GetByEvent(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var albums []models.PhotoAlbum
	if err := h.DB.
		Preload("Photos").
		Where("event_id = ?", eventID).
		Order("created_at").
		Find(&albums).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing albums")
	}

	return utils.JSON(c, fiber.StatusOK, albums)
}

type addPhotoRequest struct {
	URL string `json:"url"`
}

// AddPhoto requires the actor to be a participant or organizer of the
// album's event.
func (h *PhotoAlbumsHandler) AddPhoto(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	albumID, err := parseUUID(c.Params("albumId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid album id")
	}

	var req addPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return utils.ValidationError(c, []utils.FieldError{{Field: "url", Message: "url is required"}})
	}

	album, status, msg := h.loadAlbumForPosting(albumID, currentUser.ID)
	if album == nil {
		return utils.Error(c, status, msg)
	}

	photo := models.Photo{
		AlbumID:    albumID,
		URL:        req.URL,
		PostedByID: currentUser.ID,
	}
	if err := h.DB.Create(&photo).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating photo")
	}

	var populated models.Photo
	if err := h.DB.Preload("PostedBy").Preload("Comments").First(&populated, "id = ?", photo.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading photo")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

// UploadPhoto stores the image binary in object storage and records the
// resulting URL, under the same permission gate as AddPhoto.
func (h *PhotoAlbumsHandler) UploadPhoto(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if h.Storage == nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "photo storage not configured")
	}

	albumID, err := parseUUID(c.Params("albumId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid album id")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "photo file is required")
	}

	album, status, msg := h.loadAlbumForPosting(albumID, currentUser.ID)
	if album == nil {
		return utils.Error(c, status, msg)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "failed reading photo file")
	}
	defer file.Close()

	objectName := fmt.Sprintf("%s/%s%s", albumID, uuid.New(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing photo")
	}

	photo := models.Photo{
		AlbumID:    albumID,
		URL:        h.Storage.ObjectURL(objectName),
		PostedByID: currentUser.ID,
	}
	if err := h.DB.Create(&photo).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating photo")
	}

	logger.InfoWithUser(currentUser.ID.String(), "photo_uploaded", map[string]interface{}{
		"album_id":    albumID.String(),
		"object_name": objectName,
		"size":        fileHeader.Size,
	})

	var populated models.Photo
	if err := h.DB.Preload("PostedBy").Preload("Comments").First(&populated, "id = ?", photo.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading photo")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// AddComment has no gate beyond authentication.
func (h *PhotoAlbumsHandler) AddComment(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	photoID, err := parseUUID(c.Params("photoId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id")
	}

	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return utils.ValidationError(c, []utils.FieldError{{Field: "content", Message: "content is required"}})
	}

	var photo models.Photo
	if err := h.DB.First(&photo, "id = ?", photoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "photo not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading photo")
	}

	comment := models.PhotoComment{
		PhotoID:  photoID,
		Content:  req.Content,
		AuthorID: currentUser.ID,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating comment")
	}

	var populated models.PhotoComment
	if err := h.DB.Preload("Author").First(&populated, "id = ?", comment.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading comment")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

// loadAlbumForPosting resolves the album and checks the actor may post to
// its event. A nil album means the returned status/message should be sent.
func (h *PhotoAlbumsHandler) loadAlbumForPosting(albumID, userID uuid.UUID) (*models.PhotoAlbum, int, string) {
	var album models.PhotoAlbum
	if err := h.DB.First(&album, "id = ?", albumID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.StatusNotFound, "album not found"
		}
		return nil, fiber.StatusInternalServerError, "failed loading album"
	}

	allowed, err := h.Access.CanPostPhotos(album.EventID, userID)
	if err != nil {
		return nil, fiber.StatusInternalServerError, "failed checking permissions"
	}
	if !allowed {
		logger.WarnWithUser(userID.String(), "permission_denied", map[string]interface{}{
			"action":   "photo_post",
			"album_id": album.ID.String(),
			"event_id": album.EventID.String(),
		})
		return nil, fiber.StatusForbidden, "only participants or organizers can post photos"
	}
	return &album, fiber.StatusOK, ""
}
