package user

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-workflow/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// UserPort is how other modules reach the user directory and authentication.
type UserPort interface {
	Register(ctx context.Context, req *RegisterRequest) (*domain.Profile, error)
	Login(ctx context.Context, req *LoginRequest) (*domain.Session, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	ListUsers(ctx context.Context) ([]domain.Profile, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ResolveUsers(ctx context.Context, userIDs []string) (map[string]string, error)
}

// userAdapter implements UserPort over the service container.
type userAdapter struct {
	container mono.ServiceContainer
}

// NewUserAdapter creates a UserPort backed by the user module's services.
func NewUserAdapter(container mono.ServiceContainer) UserPort {
	if container == nil {
		panic("user adapter requires non-nil ServiceContainer")
	}
	return &userAdapter{container: container}
}

func (a *userAdapter) Register(ctx context.Context, req *RegisterRequest) (*domain.Profile, error) {
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "register", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("register service call failed: %w", err)
	}
	return &resp.User, nil
}

func (a *userAdapter) Login(ctx context.Context, req *LoginRequest) (*domain.Session, error) {
	var resp LoginResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "login", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("login service call failed: %w", err)
	}
	return &resp.Session, nil
}

func (a *userAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "validate-token", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token service call failed: %w", err)
	}
	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}
	return &domain.Claims{UserID: resp.UserID, Email: resp.Email}, nil
}

func (a *userAdapter) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	req := ListUsersRequest{}
	var resp ListUsersResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-users", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-users service call failed: %w", err)
	}
	return resp.Users, nil
}

func (a *userAdapter) UserExists(ctx context.Context, userID string) (bool, error) {
	req := UserExistsRequest{UserID: userID}
	var resp UserExistsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "user-exists", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return false, fmt.Errorf("user-exists service call failed: %w", err)
	}
	return resp.Exists, nil
}

func (a *userAdapter) ResolveUsers(ctx context.Context, userIDs []string) (map[string]string, error) {
	req := ResolveUsersRequest{UserIDs: userIDs}
	var resp ResolveUsersResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "resolve-users", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("resolve-users service call failed: %w", err)
	}
	if resp.Names == nil {
		resp.Names = map[string]string{}
	}
	return resp.Names, nil
}
