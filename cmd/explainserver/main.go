// Command explainserver boots the multi-tenant explanation pipeline HTTP
// service.
//
// Startup sequence:
//  1. Load configuration (conf/global.yaml + EXPLAIN_ env overrides,
//     Vault-backed secrets resolved inline).
//  2. Install the global zap logger.
//  3. Open the global control-plane database.
//  4. Build the KV store (in-process for local/dev, Redis when an
//     address is configured), the retriever, the LLM client, the
//     generator, the per-tenant pool cache, and the schema resolver.
//  5. Wire the orchestrator and mount the HTTP router.
//  6. Serve with a graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/roamdigital/explainer/internal/config"
	"github.com/roamdigital/explainer/internal/database"
	"github.com/roamdigital/explainer/internal/explain"
	"github.com/roamdigital/explainer/internal/httpapi"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/llmclient"
	"github.com/roamdigital/explainer/internal/logger"
	"github.com/roamdigital/explainer/internal/orchestrator"
	"github.com/roamdigital/explainer/internal/retrieval"
	"github.com/roamdigital/explainer/internal/schema"
	"github.com/roamdigital/explainer/internal/server"
	"github.com/roamdigital/explainer/internal/tenant"
	"github.com/roamdigital/explainer/internal/vault"
)

const (
	globalDBMaxOpen = 64
	globalDBMaxIdle = 16

	tenantPoolIdleTTL    = 30 * time.Minute
	tenantCacheMaxEntries = 64

	shutdownGracePeriod = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	tee := cfg.Pipeline.Environment != "production"
	zl, err := logger.New(cfg.Paths.Root, tee)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	sugar := zl.Sugar()
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	globalDSN := fmt.Sprintf(cfg.Database.GlobalDSN, cfg.Database.GlobalPassword)
	globalDB, err := database.OpenWithOptions(globalDSN, globalDBMaxOpen, globalDBMaxIdle)
	if err != nil {
		sugar.Fatalw("open global database", "err", err)
	}
	defer globalDB.Close()

	vaultCli, err := vault.New(ctx, sugar.Debugf)
	if err != nil {
		sugar.Fatalw("init vault client", "err", err)
	}

	store, err := buildKVStore(ctx, cfg.KV.Addr)
	if err != nil {
		sugar.Fatalw("init kv store", "err", err)
	}

	retriever := retrieval.New(cfg.Retrieval)

	llm, err := llmclient.New(cfg.LLM)
	if err != nil {
		// Reassign explicitly: a failed openai.New can return a typed nil
		// wrapped in the llms.Model interface, which would not compare
		// equal to a bare nil downstream.
		sugar.Warnw("llm client unavailable, falling back to deterministic generation", "err", err)
		llm = nil
	}

	generator := explain.New(llm, cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.Pipeline.HistoryCharBudget, cfg.Pipeline.HistoryMessageCap)
	tenants := tenant.New(globalDB, vaultCli, tenantPoolIdleTTL, tenantCacheMaxEntries, sugar)
	schemaResolver := schema.New(store, cfg.Pipeline.SchemaTTL)

	orch := orchestrator.New(orchestrator.Deps{
		Tenants:       tenants,
		Schema:        schemaResolver,
		TraceStore:    store,
		TraceTTL:      cfg.Pipeline.TraceTTL,
		Retriever:     retriever,
		Generator:     generator,
		LLM:           llm,
		DefaultTenant: cfg.Pipeline.DefaultTenant,
		NearbyWindow:  cfg.Pipeline.NearbyPostcodeWindow,
	})

	router := httpapi.Router(httpapi.Deps{
		Orchestrator:  orch,
		Schema:        schemaResolver,
		TraceStore:    store,
		DefaultTenant: cfg.Pipeline.DefaultTenant,
	})

	srv := server.New(cfg.HTTP.ListenAddr, router)

	go func() {
		sugar.Infow("listening", "addr", cfg.HTTP.ListenAddr, "environment", cfg.Pipeline.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("http server", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "err", err)
	}
}

// buildKVStore picks the Redis-backed store when an address is
// configured, an in-process TTL map otherwise — the same distinction
// local/dev and production already draw for every other external
// dependency in this service.
func buildKVStore(ctx context.Context, addr string) (kv.Store, error) {
	if addr == "" {
		return kv.NewMemory(0), nil
	}
	r, err := kv.NewRedis(ctx, addr)
	if err != nil {
		return nil, err
	}
	return r, nil
}
