package user

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// demoPassword is shared by the seeded accounts.
const demoPassword = "password123"

var demoUsers = []struct {
	name  string
	email string
}{
	{"Alice Johnson", "alice@example.com"},
	{"Bob Smith", "bob@example.com"},
	{"Charlie Brown", "charlie@example.com"},
}

// SeedDemoUsers registers alice, bob and charlie unless they already exist.
func SeedDemoUsers(ctx context.Context, svc *Service) error {
	for _, u := range demoUsers {
		if _, err := svc.Register(ctx, u.name, u.email, demoPassword); err != nil {
			if errors.Is(err, ErrUserExists) {
				continue
			}
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
		log.Printf("[user] Seeded demo user %s", u.email)
	}
	return nil
}
