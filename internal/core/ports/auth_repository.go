package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// AuthRepository persists user accounts. Usernames are unique.
type AuthRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
