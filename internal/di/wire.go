//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"graphlearn/internal/config"
	"graphlearn/internal/ui"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracing,
	ProvideSessionStorage,
	ProvideSessionStore,
	ProvideRequestClient,
	ProvideAPI,
	ProvideTemplateLoader,
	ProvideRenderer,
	ProvideLoop,
	ProvideCanvasFactory,
	ProvideApp,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config, notifier ui.Notifier) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
