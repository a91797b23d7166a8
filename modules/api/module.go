package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/task-workflow/modules/activity"
	"github.com/example/task-workflow/modules/notification"
	"github.com/example/task-workflow/modules/task"
	"github.com/example/task-workflow/modules/user"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config controls the HTTP server.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RequireAuth  bool
}

// HealthSource is a module whose health /health reports.
type HealthSource interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule is the HTTP API module.
type APIModule struct {
	config        Config
	app           *fiber.App
	users         user.UserPort
	tasks         task.TaskPort
	ledger        activity.LedgerPort
	notifications notification.NotificationPort
	sources       []HealthSource
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(config Config) *APIModule {
	return &APIModule{config: config}
}

// AddHealthSources adds modules to the /health report.
func (m *APIModule) AddHealthSources(sources ...HealthSource) {
	m.sources = append(m.sources, sources...)
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"user", "task", "activity", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "user":
		m.users = user.NewUserAdapter(container)
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "activity":
		m.ledger = activity.NewLedgerAdapter(container)
	case "notification":
		m.notifications = notification.NewNotificationAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.users == nil || m.tasks == nil || m.ledger == nil || m.notifications == nil {
		return fmt.Errorf("api dependencies not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           m.config.ReadTimeout,
		WriteTimeout:          m.config.WriteTimeout,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	var auth fiber.Handler
	if m.config.RequireAuth {
		auth = AuthMiddleware(m.users)
	}
	handlers := NewHandlers(m.users, m.tasks, m.ledger, m.notifications)
	setupRoutes(m.app, handlers, auth, healthHandler(m.sources))

	addr := fmt.Sprintf(":%d", m.config.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s (auth required: %v)", addr, m.config.RequireAuth)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

// healthHandler answers 200 when every source is healthy and 503 otherwise.
func healthHandler(sources []HealthSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := HealthResponse{Status: "healthy", Modules: make(map[string]ModuleHealth, len(sources))}
		for _, s := range sources {
			h := s.Health(c.UserContext())
			resp.Modules[s.Name()] = ModuleHealth{Healthy: h.Healthy, Message: h.Message, Details: h.Details}
			if !h.Healthy {
				resp.Status = "unhealthy"
			}
		}

		if resp.Status != "healthy" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	}
}
