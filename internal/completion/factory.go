package completion

import (
	"fmt"
	"log/slog"

	"telehealth/internal/config"
	"telehealth/internal/port"
)

// ProviderFactory creates a CompletionProvider from a provider config.
type ProviderFactory func(cfg *config.CompletionProviderConfig) (port.CompletionProvider, error)

// Registry maps provider names ("gemini", "claude", ...) to factories.
type Registry struct {
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]ProviderFactory{}}
}

// Register adds or replaces a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.factories[name] = factory
}

// New creates a CompletionProvider from a provider config using the registered factory.
func (r *Registry) New(cfg *config.CompletionProviderConfig) (port.CompletionProvider, error) {
	factory, ok := r.factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build assembles the configured providers. A single provider is returned as is;
// secondary and tertiary providers are chained behind it in a FallbackProvider.
func (r *Registry) Build(cfg *config.CompletionConfig, logger *slog.Logger) (port.CompletionProvider, error) {
	tiers := []*config.CompletionProviderConfig{cfg.PrimaryConfig()}
	if s := cfg.SecondaryConfig(); s != nil {
		tiers = append(tiers, s)
	}
	if t := cfg.TertiaryConfig(); t != nil {
		tiers = append(tiers, t)
	}

	providers := make([]port.CompletionProvider, 0, len(tiers))
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		p, err := r.New(tier)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
		names = append(names, tier.Provider)
	}

	if len(providers) == 1 {
		return providers[0], nil
	}
	logger.Info("completion.Registry.Build: failover chain configured", "providers", names)
	return NewFallbackProvider(providers, names, logger), nil
}
