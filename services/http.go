package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/psikotes-ai/psikotes_api/services/handlers"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type HttpService struct {
	context.DefaultService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

// The middleware services live in their own package; the container hands
// them back as interfaces to avoid an import cycle.
type authGuard interface {
	RequiredAuth() fiber.Handler
	RequireAdmin() fiber.Handler
}

type rateLimiter interface {
	IPRateLimit() fiber.Handler
	AuthRateLimit() fiber.Handler
	GenerationRateLimit() fiber.Handler
	DuelJoinRateLimit() fiber.Handler
}

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	authSvc := svc.Service(AUTH_SVC).(*AuthService)
	quickSvc := svc.Service(QUICKTEST_SVC).(*QuickTestService)
	sessionSvc := svc.Service(TEST_SESSION_SVC).(*TestSessionService)
	duelSvc := svc.Service(DUEL_SVC).(*DuelService)
	dashboardSvc := svc.Service(DASHBOARD_SVC).(*DashboardService)
	kreplinSvc := svc.Service(KREPLIN_SVC).(*KreplinService)
	bookSvc := svc.Service(BOOK_SVC).(*BookService)
	adminSvc := svc.Service(ADMIN_SVC).(*AdminService)
	monitoringSvc := svc.Service(MONITORING_SVC).(*MonitoringService)

	guard := svc.Service("auth").(authGuard)
	limiter := svc.Service("rate_limit").(rateLimiter)

	authHandler := handlers.NewAuthHandler(authSvc)
	quickHandler := handlers.NewQuickTestHandler(quickSvc)
	sessionHandler := handlers.NewTestSessionHandler(sessionSvc)
	kreplinHandler := handlers.NewKreplinHandler(kreplinSvc)
	kreplinDuelHandler := handlers.NewDuelHandler(duelSvc, authSvc, shared.DuelKindKreplin)
	testDuelHandler := handlers.NewDuelHandler(duelSvc, authSvc, shared.DuelKindTest)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)
	bookHandler := handlers.NewBookHandler(bookSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc, bookSvc)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
		BodyLimit:    110 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(MonitoringMiddleware(monitoringSvc))
	app.Use(limiter.IPRateLimit())

	app.Get("/ping", svc.ping)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Public
	v1.Post("/register", limiter.AuthRateLimit(), authHandler.Register)
	v1.Post("/login", limiter.AuthRateLimit(), authHandler.Login)
	v1.Post("/generate-questions", limiter.GenerationRateLimit(), quickHandler.Generate)
	v1.Get("/quick-sessions", quickHandler.List)
	v1.Get("/quick-sessions/:id", quickHandler.Get)
	v1.Patch("/quick-sessions/:id", quickHandler.Patch)
	v1.Delete("/quick-sessions/:id", quickHandler.Delete)
	v1.Post("/quick-sessions/:id/answer", quickHandler.Answer)
	v1.Post("/quick-sessions/:id/complete", quickHandler.Complete)
	v1.Get("/public/sessions/:publicId", sessionHandler.GetPublic)

	// Authenticated
	authed := v1.Group("", guard.RequiredAuth())
	authed.Post("/logout", authHandler.Logout)
	authed.Get("/me", authHandler.Me)

	authed.Post("/test-sessions", limiter.GenerationRateLimit(), sessionHandler.Create)
	authed.Get("/test-sessions/:id", sessionHandler.Get)
	authed.Patch("/test-sessions/:id", sessionHandler.Patch)
	authed.Delete("/test-sessions/:id", sessionHandler.Delete)
	authed.Post("/test-sessions/:id/answer", sessionHandler.Answer)
	authed.Post("/test-sessions/:id/complete", sessionHandler.Complete)
	authed.Post("/test-sessions/:id/draft", sessionHandler.SaveDraft)

	authed.Get("/dashboard", dashboardHandler.Get)

	authed.Post("/kreplin-results", kreplinHandler.Create)
	authed.Get("/kreplin-results/:id", kreplinHandler.Get)
	authed.Post("/kreplin-results/:id/analyze", kreplinHandler.Analyze)

	registerDuelRoutes(authed.Group("/kreplin-duels"), kreplinDuelHandler, limiter)
	registerDuelRoutes(authed.Group("/test-duels"), testDuelHandler, limiter)

	authed.Get("/books", bookHandler.List)
	authed.Post("/books", bookHandler.Upload)
	authed.Get("/books/:id", bookHandler.Get)
	authed.Delete("/books/:id", bookHandler.Delete)
	authed.Get("/books/:id/file", bookHandler.GetFile)
	authed.Post("/books/:id/cover", bookHandler.UploadCover)
	authed.Get("/books/:id/progress", bookHandler.GetProgress)
	authed.Put("/books/:id/progress", bookHandler.SaveProgress)
	authed.Get("/books/:id/annotations", bookHandler.ListAnnotations)
	authed.Post("/books/:id/annotations", bookHandler.CreateAnnotation)
	authed.Delete("/books/:id/annotations/:annId", bookHandler.DeleteAnnotation)

	// Admin
	admin := authed.Group("/admin", guard.RequireAdmin())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Patch("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Get("/sessions", adminHandler.ListSessions)
	admin.Delete("/books/:id", adminHandler.DeleteBook)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.Printf("HTTP server listening on :%d", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func registerDuelRoutes(group fiber.Router, h *handlers.DuelHandler, limiter rateLimiter) {
	group.Post("", h.Create)
	group.Post("/join", limiter.DuelJoinRateLimit(), h.Join)
	group.Get("/:code", h.Get)
	group.Patch("/:code/ready", h.Ready)
	group.Post("/:code/result", h.Result)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= 500 {
			log.WithError(appErr.Err).WithField("path", c.Path()).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return shared.ResponseInternalError(c)
}
