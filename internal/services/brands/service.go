// Package brands gives operators access to the brand directory.
package brands

import (
	"context"
	"strings"

	"brandguard/internal/domain"
	"brandguard/internal/domainname"
	"brandguard/internal/ports"
)

type Service struct {
	registry ports.BrandRegistry
}

func New(registry ports.BrandRegistry) *Service { return &Service{registry: registry} }

func (s *Service) Get(ctx context.Context, brandID string) (domain.Brand, error) {
	return s.registry.GetBrand(ctx, brandID)
}

// Register adds a brand; rawDomain may be a URL or hostname.
func (s *Service) Register(ctx context.Context, name, rawDomain string) (domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Brand{}, domain.Invalid("brand name is required")
	}
	d := domainname.Normalize(rawDomain)
	if !strings.Contains(d, ".") {
		return domain.Brand{}, domain.Invalid("not a domain: %q", rawDomain)
	}
	return s.registry.CreateBrand(ctx, name, d)
}

func (s *Service) List(ctx context.Context) ([]domain.Brand, error) {
	return s.registry.ListBrands(ctx)
}
