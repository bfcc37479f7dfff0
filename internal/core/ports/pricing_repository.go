package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// PricingConfig is the versioned zone/price table the estimation engine reads.
// Version changes whenever the table is replaced, so identical estimate inputs
// against an identical version always produce identical output.
type PricingConfig struct {
	Version int64
	Zones   []domain.Zone
}

// PricingRepository provides access to the pricing configuration.
type PricingRepository interface {
	Current(ctx context.Context) (*PricingConfig, error)
	// Replace installs a new zone table and bumps the config version.
	Replace(ctx context.Context, zones []domain.Zone) (*PricingConfig, error)
}
