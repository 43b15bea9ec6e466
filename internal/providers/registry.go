package providers

import (
	"context"
	"sort"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/internal/logging"
	"github.com/systmms/cloudsec/pkg/provider"
)

// Registry maps provider kinds to factories
type Registry struct {
	factories map[provider.Kind]provider.Factory
}

// NewRegistry creates a registry with the built-in backends
func NewRegistry(logger *logging.Logger) *Registry {
	registry := &Registry{
		factories: make(map[provider.Kind]provider.Factory),
	}

	registry.RegisterFactory(provider.KindGCP, func(ctx context.Context, env provider.Environment) (provider.Provider, error) {
		return NewGCPSecretManagerProvider(ctx, env, WithGCPLogger(logger))
	})
	registry.RegisterFactory(provider.KindAWS, func(ctx context.Context, env provider.Environment) (provider.Provider, error) {
		return NewAWSSecretsManagerProvider(env, logger), nil
	})

	return registry
}

// RegisterFactory registers a provider factory for a given kind
func (r *Registry) RegisterFactory(kind provider.Kind, factory provider.Factory) {
	r.factories[kind] = factory
}

// CreateProvider builds the provider for env. Unknown kinds fail with
// errors.ErrUnsupportedProvider.
func (r *Registry) CreateProvider(ctx context.Context, env provider.Environment) (provider.Provider, error) {
	factory, exists := r.factories[env.Provider]
	if !exists {
		return nil, dserrors.UnsupportedProvider(string(env.Provider))
	}
	return factory(ctx, env)
}

// Factory returns CreateProvider as a provider.Factory.
func (r *Registry) Factory() provider.Factory {
	return r.CreateProvider
}

// SupportedKinds returns the registered kinds in sorted order
func (r *Registry) SupportedKinds() []provider.Kind {
	kinds := make([]provider.Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// IsSupported checks if a provider kind is registered
func (r *Registry) IsSupported(kind provider.Kind) bool {
	_, exists := r.factories[kind]
	return exists
}
