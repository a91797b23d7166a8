package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	domain "github.com/example/task-workflow/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config configures the user module.
type Config struct {
	DBPath   string
	Debug    bool
	JWT      JWTConfig
	SeedDemo bool
}

// UserModule is the user directory and the authentication collaborator.
type UserModule struct {
	config  Config
	db      *gorm.DB
	service *Service
}

// Compile-time interface checks.
var _ mono.Module = (*UserModule)(nil)
var _ mono.ServiceProviderModule = (*UserModule)(nil)
var _ mono.HealthCheckableModule = (*UserModule)(nil)

// NewModule creates a new UserModule.
func NewModule(config Config) *UserModule {
	return &UserModule{config: config}
}

// Name returns the module name.
func (m *UserModule) Name() string {
	return "user"
}

// Start opens the database and builds the service.
func (m *UserModule) Start(ctx context.Context) error {
	logLevel := logger.Silent
	if m.config.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.config.DBPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(repo, NewPasswordHasher(), NewJWTManager(m.config.JWT))

	if m.config.SeedDemo {
		if err := SeedDemoUsers(ctx, m.service); err != nil {
			return err
		}
	}

	log.Printf("[user] Module started (database: %s)", m.config.DBPath)
	return nil
}

// Stop closes the database.
func (m *UserModule) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[user] Module stopped")
	return nil
}

// Health pings the database.
func (m *UserModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.config.DBPath},
	}
}

// Service returns the user service. It is nil before Start.
func (m *UserModule) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *UserModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-users", json.Unmarshal, json.Marshal, m.handleListUsers,
	); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "user-exists", json.Unmarshal, json.Marshal, m.handleUserExists,
	); err != nil {
		return fmt.Errorf("failed to register user-exists service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "resolve-users", json.Unmarshal, json.Marshal, m.handleResolveUsers,
	); err != nil {
		return fmt.Errorf("failed to register resolve-users service: %w", err)
	}

	log.Printf("[user] Registered services: register, login, validate-token, list-users, user-exists, resolve-users")
	return nil
}

func (m *UserModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{User: user.ToProfile()}, nil
}

func (m *UserModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{Session: *session}, nil
}

func (m *UserModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{Valid: false, Error: err.Error()}, nil
	}
	return ValidateTokenResponse{Valid: true, UserID: claims.UserID, Email: claims.Email}, nil
}

func (m *UserModule) handleListUsers(ctx context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx)
	if err != nil {
		return ListUsersResponse{}, err
	}
	if users == nil {
		users = []domain.Profile{}
	}
	return ListUsersResponse{Users: users}, nil
}

func (m *UserModule) handleUserExists(ctx context.Context, req UserExistsRequest, _ *mono.Msg) (UserExistsResponse, error) {
	exists, err := m.service.UserExists(ctx, req.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return UserExistsResponse{}, err
	}
	return UserExistsResponse{Exists: exists}, nil
}

func (m *UserModule) handleResolveUsers(ctx context.Context, req ResolveUsersRequest, _ *mono.Msg) (ResolveUsersResponse, error) {
	names, err := m.service.ResolveNames(ctx, req.UserIDs)
	if err != nil {
		return ResolveUsersResponse{}, err
	}
	return ResolveUsersResponse{Names: names}, nil
}
