package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-workflow/config"
	"github.com/example/task-workflow/modules/activity"
	"github.com/example/task-workflow/modules/api"
	"github.com/example/task-workflow/modules/cache"
	"github.com/example/task-workflow/modules/notification"
	"github.com/example/task-workflow/modules/task"
	"github.com/example/task-workflow/modules/user"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Task Workflow Service ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.App.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.App.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	userModule := user.NewModule(user.Config{
		DBPath: cfg.Database.UsersPath,
		Debug:  cfg.Database.Debug,
		JWT: user.JWTConfig{
			SecretKey:           cfg.JWT.SecretKey,
			AccessTokenDuration: cfg.JWT.AccessTokenDuration,
			Issuer:              cfg.JWT.Issuer,
		},
		SeedDemo: cfg.Users.SeedDemo,
	})
	activityModule := activity.NewModule(cfg.Database.ActivityPath, cfg.Database.Debug)
	notificationModule := notification.NewModule(cfg.Notification.Capacity)
	taskModule := task.NewModule(cfg.Database.TasksPath, cfg.Database.Debug)
	apiModule := api.NewModule(api.Config{
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		RequireAuth:  cfg.HTTP.RequireAuth,
	})
	apiModule.AddHealthSources(userModule, activityModule, taskModule)

	// Order: independent modules first, then modules with dependencies
	app.Register(userModule)     // User directory and authentication
	app.Register(activityModule) // Activity ledger (depends on user)
	if cfg.Redis.Enabled {
		cacheModule := cache.NewModule(cache.Config{
			Addr:     cfg.Redis.Addr,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
			PoolSize: cfg.Redis.PoolSize,
		})
		taskModule.SetCacheModule(cacheModule)
		apiModule.AddHealthSources(cacheModule)
		app.Register(cacheModule) // Load-count cache
	}
	app.Register(notificationModule) // Event consumer (subscribes to task events)
	app.Register(taskModule)         // Workflow engine (depends on user, activity; emits events)
	app.Register(apiModule)          // HTTP API (depends on everything above)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.App.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTP.Port)
	log.Println("  POST   /api/users/register      - Register a user")
	log.Println("  POST   /api/users/login         - Log in and receive a token")
	log.Println("  GET    /api/users               - List users")
	log.Println("  GET    /api/tasks               - List tasks")
	log.Println("  POST   /api/tasks               - Create a task")
	log.Println("  POST   /api/tasks/smart-assign  - Create a task for the least loaded user")
	log.Println("  PUT    /api/tasks/:id           - Update task status")
	log.Println("  DELETE /api/tasks/:id           - Delete a task")
	log.Println("  GET    /api/logs                - Activity log, newest first")
	log.Println("  GET    /api/notifications       - Recent task notifications")
	log.Println("  GET    /health                  - Health check")
	if cfg.Users.SeedDemo {
		log.Println("")
		log.Println("Demo users (password: password123):")
		log.Println("  alice@example.com, bob@example.com, charlie@example.com")
	}
	if cfg.HTTP.RequireAuth {
		log.Println("")
		log.Println("Task, log and notification routes require: Authorization: Bearer <token>")
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
