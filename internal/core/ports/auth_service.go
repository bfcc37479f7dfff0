package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// RegisterUserInput carries a new account request. DriverID is only
// honoured for driver-role accounts.
type RegisterUserInput struct {
	Username string
	Password string
	Email    string
	Role     string
	DriverID string
}

// AuthService manages accounts and credential exchange.
type AuthService interface {
	Register(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	// Login returns a signed token and the authenticated user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
