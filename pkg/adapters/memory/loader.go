package memory

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Loader implements ports.RouteLoader over a fixed set of routes.
type Loader struct {
	routes []domain.RouteConfig
}

// NewLoader creates a loader serving routes.
func NewLoader(routes ...domain.RouteConfig) *Loader {
	return &Loader{routes: routes}
}

// LoadRoutes returns the configured routes.
func (l *Loader) LoadRoutes(context.Context) ([]domain.RouteConfig, error) {
	return append([]domain.RouteConfig(nil), l.routes...), nil
}
