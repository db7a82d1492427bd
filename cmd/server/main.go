package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/backend/internal/config"
	"github.com/gatherly/backend/internal/database"
	"github.com/gatherly/backend/internal/handlers"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/internal/storage"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	// Photo uploads degrade to a 503 when MinIO is not configured.
	var storageClient *storage.MinIOClient
	if cfg.MinIO.Enabled {
		storageClient, err = storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("minio initialization failed: %v", err)
		}
		if err := storageClient.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("failed ensuring minio bucket: %v", err)
		}
	}

	accessService := services.NewAccessService(db)

	authHandler := handlers.NewAuthHandler(db)
	usersHandler := handlers.NewUsersHandler(db)
	groupsHandler := handlers.NewGroupsHandler(db)
	eventsHandler := handlers.NewEventsHandler(db)
	threadsHandler := handlers.NewThreadsHandler(db)
	albumsHandler := handlers.NewPhotoAlbumsHandler(db, storageClient, accessService)
	pollsHandler := handlers.NewPollsHandler(db, accessService)
	ticketsHandler := handlers.NewTicketsHandler(db, accessService)
	shoppingHandler := handlers.NewShoppingHandler(db, accessService)
	carpoolsHandler := handlers.NewCarpoolsHandler(db, accessService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimitMax,
		Expiration: cfg.Server.RateLimitWindow,
	}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/", authMiddleware.OptionalAuth, func(c *fiber.Ctx) error {
		body := fiber.Map{
			"service": "gatherly-backend",
			"endpoints": []string{
				"/auth", "/users", "/groups", "/events",
				"/discussion-threads", "/photo-albums", "/photos",
				"/polls", "/tickets", "/carpools",
			},
		}
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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
