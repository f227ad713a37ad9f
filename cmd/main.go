package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aamijar/tokenomics/api"
	"github.com/aamijar/tokenomics/internal/config"
	"github.com/aamijar/tokenomics/internal/data"
	"github.com/aamijar/tokenomics/internal/service"
	"github.com/aamijar/tokenomics/internal/upstream"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = 10 * time.Minute
)

func main() {
	cfg := config.Load()
	log := setupLogger(cfg)
	slog.SetDefault(log)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal, stopping services")
		cancel()
	}()

	// 1. Create the shared read-through cache
	cache := data.NewCacheWithConfig(data.CacheConfig{Shards: cfg.CacheShards}, nil)
	go purgeLoop(ctx, cache, cfg.SnapshotTTL, log)

	deps := service.Deps{
		Cache:       cache,
		Logger:      log,
		Timeout:     cfg.UpstreamTimeout,
		SnapshotTTL: cfg.SnapshotTTL,
	}

	// 2. Optional snapshot store so last-known data survives restarts
	if cfg.RedisAddr != "" {
		snapshots := data.NewRedisSnapshotStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := snapshots.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, snapshots disabled", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			_ = snapshots.Close()
		} else {
			log.Info("snapshot store enabled", slog.String("addr", cfg.RedisAddr))
			deps.Snapshots = snapshots
			defer snapshots.Close()
		}
		pingCancel()
	}

	// 3. Create upstream clients; missing credentials surface as degraded responses, not startup errors
	coinGecko := upstream.NewCoinGecko(cfg.CoinGeckoBase, cfg.CoinGeckoAPIKey, cfg.UpstreamTimeout)
	up := service.Upstreams{
		Markets:   coinGecko,
		Platforms: coinGecko,
		Pools: []service.PoolSource{
			upstream.NewSubgraph(upstream.ChainEthereum, cfg.SubgraphEthereumURL, cfg.UpstreamTimeout),
			upstream.NewSubgraph(upstream.ChainBase, cfg.SubgraphBaseURL, cfg.UpstreamTimeout),
		},
		Activity: []service.ActivitySource{
			upstream.NewExplorer(upstream.ChainEthereum, cfg.EtherscanBase, cfg.EtherscanAPIKey, cfg.UpstreamTimeout),
			upstream.NewExplorer(upstream.ChainBase, cfg.BasescanBase, cfg.BasescanAPIKey, cfg.UpstreamTimeout),
		},
	}

	// 4. Select the quote/transaction strategy once
	providers := service.NewProviders(cfg.QuoteProvider, upstream.NewOneInch(cfg.OneInchBase, cfg.OneInchAPIKey, cfg.UpstreamTimeout))
	if cfg.QuoteProvider == service.ProviderOneInch && cfg.OneInchAPIKey == "" {
		log.Warn("1inch selected without ONEINCH_API_KEY, quotes will fall back to mock")
	}

	dashboard := service.NewDashboard(up, providers, deps)

	// Create API handler
	apiHandler := api.NewAPIHandler(dashboard, api.ServerConfig{
		CORSOrigin:     cfg.CORSOrigin,
		MetricsEnabled: cfg.MetricsEnabled,
	}, log)
	server := apiHandler.NewServer(":" + cfg.Port)

	go func() {
		log.Info("server listening",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.AppEnv),
			slog.String("quote_provider", providers.Quotes.Name()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", slog.String("error", err.Error()))
	}
	log.Info("service stopped")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	switch cfg.AppEnv {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
}

// purgeLoop drops cache entries that expired longer than retention ago
func purgeLoop(ctx context.Context, cache *data.Cache, retention time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := cache.Purge(retention); n > 0 {
				log.Debug(fmt.Sprintf("purged %d expired cache entries", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
