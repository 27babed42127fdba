package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/classify"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/config"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/extract"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/resolve"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/store"
	"github.com/RaygunnerZA/property-task-pro-sub003/pkg/anthropic"
)

// env bundles the wired components a command needs.
type env struct {
	Store    store.CatalogStore
	Resolver *resolve.Resolver
	Policies classify.PolicySet
	cfg      *config.Config
}

// initEnv opens the configured store and builds the resolver.
func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policies, err := buildPolicies(cfg.Resolver)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &env{
		Store: st,
		Resolver: resolve.NewResolver(resolve.Options{
			SimilarityThreshold: cfg.Resolver.SimilarityThreshold,
			FuzzyConfidence:     cfg.Resolver.FuzzyConfidence,
		}),
		Policies: policies,
		cfg:      cfg,
	}, nil
}

// Close releases the store.
func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// extractor builds the configured candidate extractor. The rule-based
// fallback scans the given catalog entries; the model extractor needs
// an API key.
func (e *env) extractor(entries []model.CatalogEntry) (extract.Extractor, error) {
	switch e.cfg.Extractor.Provider {
	case "rules":
		return extract.NewRuleExtractor(entries), nil
	case "model":
		if e.cfg.Anthropic.Key == "" {
			return nil, eris.New("extractor provider is \"model\" but anthropic.key is not set")
		}
		client := anthropic.NewClient(e.cfg.Anthropic.Key)
		return extract.NewModelExtractor(client, e.cfg.Anthropic.Model, e.cfg.Extractor.RequestsPerSecond), nil
	default:
		return nil, eris.Errorf("unknown extractor provider %q", e.cfg.Extractor.Provider)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.CatalogStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildPolicies(rc config.ResolverConfig) (classify.PolicySet, error) {
	blocking, err := rc.BlockingPolicy()
	if err != nil {
		return nil, err
	}
	policies := make(classify.PolicySet, len(blocking))
	for t := range blocking {
		policies[t] = classify.Policy{BlockingRequired: true}
	}
	return policies, nil
}
