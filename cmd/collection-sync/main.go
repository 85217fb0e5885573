package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/medirec/collection-sync/internal/cache"
	"github.com/medirec/collection-sync/internal/collection"
	"github.com/medirec/collection-sync/internal/config"
	"github.com/medirec/collection-sync/internal/logging"
	"github.com/medirec/collection-sync/internal/primary"
	"github.com/medirec/collection-sync/internal/secondary"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// noSecondary stands in for the resolver when no secondary store is
// configured: nothing resolves, so every fallback degrades straight to
// the local cache.
type noSecondary struct{}

func (noSecondary) Resolve(context.Context, string) (string, bool) { return "", false }

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.IsProduction())
	logger.Info("collection-sync starting", slog.String("version", Version))

	localCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		return err
	}
	defer localCache.Close()

	registry, err := collection.LoadRegistry()
	if err != nil {
		return err
	}

	primaryClient := primary.NewClient(cfg.PrimaryAPIURL, cfg.PrimaryAPIToken, nil)

	var (
		secondaryStore collection.SecondaryStore
		resolver       collection.TableResolver
		notifier       collection.ChangeNotifier
	)

	if cfg.SecondaryURL != "" {
		client := secondary.NewClient(cfg.SecondaryURL, cfg.SecondaryAPIKey, logger, nil)
		res := secondary.NewResolver(client, registry.Candidates, logger)

		secondaryStore = client
		resolver = res
		notifier = secondary.NewNotifier(cfg.SecondaryRealtimeURL, cfg.SecondaryAPIKey, res, logger, nil)
	} else {
		logger.Info("no secondary store configured, fallback is cache-only")

		resolver = noSecondary{}
	}

	store := collection.NewStore(primaryClient, secondaryStore, resolver, notifier, localCache, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, err := store.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("bootstrapping collections: %w", err)
	}

	logger.Info("bootstrap complete", slog.Int("collections", len(snapshots)))

	var unsubscribes []func()

	for _, key := range registry.Keys() {
		unsubscribes = append(unsubscribes, store.Watch(ctx, key))
	}

	logger.Info("watching for changes", slog.Int("keys", len(registry.Keys())))

	<-ctx.Done()

	logger.Info("shutting down")

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}

	// Let in-flight secondary propagation finish before the cache closes.
	store.Wait()

	return nil
}
