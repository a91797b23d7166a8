package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/task-workflow/domain/activity"
	"github.com/example/task-workflow/modules/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ActivityModule owns the activity ledger.
type ActivityModule struct {
	dbPath   string
	debug    bool
	db       *gorm.DB
	userPort user.UserPort
	service  *Service
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.DependentModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

// NewModule creates the activity module storing entries in dbPath.
func NewModule(dbPath string, debug bool) *ActivityModule {
	return &ActivityModule{dbPath: dbPath, debug: debug}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) Dependencies() []string {
	return []string{"user"}
}

func (m *ActivityModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "user" {
		m.userPort = user.NewUserAdapter(container)
	}
}

func (m *ActivityModule) Start(ctx context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("userPort dependency not set")
	}

	logLevel := logger.Silent
	if m.debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	ledger := NewLedger(db)
	if err := ledger.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m.service = NewService(ledger, m.userPort)

	log.Printf("[activity] Module started (database: %s, depends on: user)", m.dbPath)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[activity] Module stopped")
	return nil
}

func (m *ActivityModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil || m.service == nil {
		return mono.HealthStatus{Healthy: false, Message: "ledger not initialized"}
	}
	count, err := m.service.ledger.Count(ctx)
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath, "entries": count},
	}
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "append-activity", json.Unmarshal, json.Marshal, m.appendActivity,
	); err != nil {
		return fmt.Errorf("failed to register append-activity service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-activity", json.Unmarshal, json.Marshal, m.listActivity,
	); err != nil {
		return fmt.Errorf("failed to register list-activity service: %w", err)
	}

	log.Printf("[activity] Registered services: append-activity, list-activity")
	return nil
}

func (m *ActivityModule) appendActivity(ctx context.Context, req AppendRequest, _ *mono.Msg) (AppendResponse, error) {
	entry, err := m.service.Append(ctx, req.Action, req.UserID)
	if err != nil {
		log.Printf("[activity] Failed to append entry %q: %v", req.Action, err)
		return AppendResponse{}, err
	}
	return AppendResponse{Entry: *entry}, nil
}

func (m *ActivityModule) listActivity(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	entries, err := m.service.ListRecent(ctx, req.Limit)
	if err != nil {
		return ListResponse{}, err
	}
	if entries == nil {
		entries = []domain.View{}
	}
	return ListResponse{Entries: entries}, nil
}
