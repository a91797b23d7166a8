package api

import (
	"strings"

	activitydomain "github.com/example/task-workflow/domain/activity"
	"github.com/example/task-workflow/modules/activity"
	"github.com/example/task-workflow/modules/notification"
	"github.com/example/task-workflow/modules/task"
	"github.com/example/task-workflow/modules/user"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	users         user.UserPort
	tasks         task.TaskPort
	ledger        activity.LedgerPort
	notifications notification.NotificationPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(users user.UserPort, tasks task.TaskPort, ledger activity.LedgerPort, notifications notification.NotificationPort) *Handlers {
	return &Handlers{
		users:         users,
		tasks:         tasks,
		ledger:        ledger,
		notifications: notifications,
	}
}

// setupRoutes mounts every route on app. A nil auth leaves the task, log and
// notification routes public.
func setupRoutes(app *fiber.App, h *Handlers, auth fiber.Handler, health fiber.Handler) {
	app.Get("/health", health)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", h.Register)
	users.Post("/login", h.Login)
	users.Get("/", h.ListUsers)

	protected := api.Group("")
	if auth != nil {
		protected.Use(auth)
	}

	tasks := protected.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Post("/smart-assign", h.SmartAssign)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)

	protected.Get("/logs", h.ListLogs)
	protected.Get("/notifications", h.ListNotifications)
}

// Register handles POST /api/users/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Name, email and password are required")
	}

	profile, err := h.users.Register(c.UserContext(), &user.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return userError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		Message: "User registered successfully",
		User:    *profile,
	})
}

// Login handles POST /api/users/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	session, err := h.users.Login(c.UserContext(), &user.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(session)
}

// ListUsers handles GET /api/users.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return userError(c, err)
	}
	for i := range users {
		users[i].Email = ""
	}
	return c.JSON(users)
}

// ListTasks handles GET /api/tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(c.UserContext(), &task.ListTasksRequest{
		Status:         c.Query("status"),
		Priority:       c.Query("priority"),
		AssignedUserID: c.Query("assignedUserId"),
	})
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	created, err := h.tasks.CreateTask(c.UserContext(), toTaskRequest(req))
	if err != nil {
		return taskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// SmartAssign handles POST /api/tasks/smart-assign.
func (h *Handlers) SmartAssign(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	assigned, err := h.tasks.SmartAssign(c.UserContext(), toTaskRequest(req))
	if err != nil {
		return taskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(SmartAssignResponse{
		Message: "Task smart-assigned",
		Task:    *assigned,
	})
}

// UpdateTask handles PUT /api/tasks/:id. Only the status can change.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.tasks.UpdateTaskStatus(c.UserContext(), c.Params("id"), strings.TrimSpace(req.Status))
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(updated)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return taskError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Task deleted successfully"})
}

// ListLogs handles GET /api/logs.
func (h *Handlers) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "limit must not be negative")
	}

	entries, err := h.ledger.ListRecent(c.UserContext(), limit)
	if err != nil {
		return taskError(c, err)
	}
	if entries == nil {
		entries = []activitydomain.View{}
	}
	return c.JSON(entries)
}

// ListNotifications handles GET /api/notifications.
func (h *Handlers) ListNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "limit must not be negative")
	}

	notifications, err := h.notifications.ListNotifications(c.UserContext(), limit)
	if err != nil {
		return taskError(c, err)
	}
	return c.JSON(notifications)
}

func toTaskRequest(req CreateTaskRequest) *task.CreateTaskRequest {
	return &task.CreateTaskRequest{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedUserID: req.AssignedUserID,
	}
}
