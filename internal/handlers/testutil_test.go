package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/database"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}

	accessService := services.NewAccessService(db)

	authHandler := NewAuthHandler(db)
	usersHandler := NewUsersHandler(db)
	groupsHandler := NewGroupsHandler(db)
	eventsHandler := NewEventsHandler(db)
	threadsHandler := NewThreadsHandler(db)
	albumsHandler := NewPhotoAlbumsHandler(db, nil, accessService)
	pollsHandler := NewPollsHandler(db, accessService)
	ticketsHandler := NewTicketsHandler(db, accessService)
	shoppingHandler := NewShoppingHandler(db, accessService)
	carpoolsHandler := NewCarpoolsHandler(db, accessService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/", authMiddleware.OptionalAuth, func(c *fiber.Ctx) error {
		body := fiber.Map{"service": "gatherly-backend"}
		if user := middleware.GetCurrentUser(c); user != nil {
			body["authenticatedAs"] = user.Email
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	app.Get("/protected", authMiddleware.RequireAuth, func(c *fiber.Ctx) error {
		user := middleware.GetCurrentUser(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "authenticated",
			"user":    user,
		})
	})

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	userRoutes := app.Group("/users")
	userRoutes.Post("/", usersHandler.Create)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id", authMiddleware.RequireAuth, usersHandler.Update)
	userRoutes.Delete("/:id", authMiddleware.RequireAuth, usersHandler.Delete)

	groupRoutes := app.Group("/groups")
	groupRoutes.Post("/", authMiddleware.RequireAuth, groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Put("/:id", authMiddleware.RequireAuth, groupsHandler.Update)
	groupRoutes.Post("/:id/members", authMiddleware.RequireAuth, groupsHandler.AddMember)
	groupRoutes.Get("/:id/events", groupsHandler.GetEvents)

	eventRoutes := app.Group("/events")
	eventRoutes.Post("/", authMiddleware.RequireAuth, eventsHandler.Create)
	eventRoutes.Get("/", eventsHandler.List)
	eventRoutes.Get("/:id", eventsHandler.Get)
	eventRoutes.Put("/:id", authMiddleware.RequireAuth, eventsHandler.Update)
	eventRoutes.Post("/:id/participants", authMiddleware.RequireAuth, eventsHandler.AddParticipant)
	eventRoutes.Get("/:eventId/photo-albums", albumsHandler.GetByEvent)
	eventRoutes.Get("/:eventId/polls", pollsHandler.GetByEvent)
	eventRoutes.Post("/:eventId/ticket-types", authMiddleware.RequireAuth, ticketsHandler.CreateTicketType)
	eventRoutes.Get("/:eventId/ticket-types", ticketsHandler.GetTicketTypes)
	eventRoutes.Get("/:eventId/tickets", authMiddleware.RequireAuth, ticketsHandler.GetByEvent)
	eventRoutes.Post("/:eventId/shopping-items", authMiddleware.RequireAuth, shoppingHandler.AddItem)
	eventRoutes.Get("/:eventId/shopping-items", shoppingHandler.GetByEvent)
	eventRoutes.Delete("/:eventId/shopping-items/:itemId", authMiddleware.RequireAuth, shoppingHandler.DeleteItem)
	eventRoutes.Post("/:eventId/carpools", authMiddleware.RequireAuth, carpoolsHandler.Create)
	eventRoutes.Get("/:eventId/carpools", carpoolsHandler.GetByEvent)

	threadRoutes := app.Group("/discussion-threads")
	threadRoutes.Post("/", authMiddleware.RequireAuth, threadsHandler.Create)
	threadRoutes.Get("/", threadsHandler.GetByGroupOrEvent)
	threadRoutes.Get("/:id", threadsHandler.Get)
	threadRoutes.Post("/:threadId/messages", authMiddleware.RequireAuth, threadsHandler.AddMessage)
	threadRoutes.Post("/:threadId/messages/:parentId/replies", authMiddleware.RequireAuth, threadsHandler.AddReply)

	albumRoutes := app.Group("/photo-albums")
	albumRoutes.Post("/", authMiddleware.RequireAuth, albumsHandler.Create)
	albumRoutes.Get("/:id", albumsHandler.Get)
	albumRoutes.Post("/:albumId/photos", authMiddleware.RequireAuth, albumsHandler.AddPhoto)
	albumRoutes.Post("/:albumId/photos/upload", authMiddleware.RequireAuth, albumsHandler.UploadPhoto)

	app.Post("/photos/:photoId/comments", authMiddleware.RequireAuth, albumsHandler.AddComment)

	pollRoutes := app.Group("/polls")
	pollRoutes.Post("/", authMiddleware.RequireAuth, pollsHandler.Create)
	pollRoutes.Get("/:id", pollsHandler.Get)
	pollRoutes.Post("/:id/vote", authMiddleware.RequireAuth, pollsHandler.Vote)

	app.Post("/tickets/purchase", ticketsHandler.Purchase)

	app.Post("/carpools/:id/join", authMiddleware.RequireAuth, carpoolsHandler.Join)

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, email string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Firstname:    "Test",
		Lastname:     "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestEvent(t *testing.T, db *gorm.DB, organizer *models.User) *models.Event {
	t.Helper()

	event := &models.Event{
		Name:       "Summer Picnic",
		StartDate:  time.Now().Add(24 * time.Hour),
		EndDate:    time.Now().Add(30 * time.Hour),
		Location:   "Central Park",
		Organizers: []models.User{*organizer},
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed creating test event: %v", err)
	}

	return event
}

func addParticipant(t *testing.T, db *gorm.DB, event *models.Event, user *models.User) {
	t.Helper()

	if err := db.Model(event).Association("Participants").Append(user); err != nil {
		t.Fatalf("failed adding participant: %v", err)
	}
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONSlice(t *testing.T, resp *http.Response) []any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertErrorMessage(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if got, _ := body["message"].(string); got != expected {
		t.Fatalf("expected error message %q, got %q", expected, got)
	}
}
