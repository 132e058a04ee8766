package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/archie/internal/adapters/driven/blobstore/local"
	blobmem "github.com/custodia-labs/archie/internal/adapters/driven/blobstore/memory"
	blobminio "github.com/custodia-labs/archie/internal/adapters/driven/blobstore/minio"
	blobs3 "github.com/custodia-labs/archie/internal/adapters/driven/blobstore/s3"
	"github.com/custodia-labs/archie/internal/adapters/driven/blobstore/throttle"
	"github.com/custodia-labs/archie/internal/adapters/driven/config/file"
	indexmem "github.com/custodia-labs/archie/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/archie/internal/adapters/driven/index/solr"
	redislock "github.com/custodia-labs/archie/internal/adapters/driven/lock/redis"
	"github.com/custodia-labs/archie/internal/adapters/driven/records/csv"
	"github.com/custodia-labs/archie/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archie/internal/adapters/driving/cli"
	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
	"github.com/custodia-labs/archie/internal/core/services"
	"github.com/custodia-labs/archie/internal/logger"
)

// wire reads the configuration in configDir and builds the services the
// CLI runs. The returned func closes every opened backend.
func wire(configDir string) (*cli.Services, func() error, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settings, err := file.LoadSettings(store)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", store.Path(), err)
	}
	logger.Debug("Loaded config from %s", store.Path())

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*cli.Services, func() error, error) {
		_ = closeAll()
		return nil, nil, err
	}

	// 1. Run history and the sqlite index share one database
	db, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fail(fmt.Errorf("opening data store: %w", err))
	}
	closers = append(closers, db.Close)

	// 2. Index
	index, err := buildIndex(settings.Index, db)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, index.Close)

	// 3. Storage
	storage, err := buildStorage(context.Background(), settings)
	if err != nil {
		return fail(err)
	}

	// 4. Batch options
	opts := []services.Option{
		services.WithErrorPolicy(settings.ErrorPolicy),
		services.WithRunStore(db.RunStore()),
	}
	if settings.Lock.Enabled() {
		lock, err := redislock.NewLock(&redis.Options{
			Addr:     settings.Lock.RedisAddr,
			Password: settings.Lock.RedisPassword,
			DB:       settings.Lock.RedisDB,
		}, settings.Lock.Namespace, settings.Lock.TTL)
		if err != nil {
			return fail(fmt.Errorf("creating run lock: %w", err))
		}
		closers = append(closers, lock.Close)
		opts = append(opts, services.WithBatchLock(lock, settings.Lock.Name))
	}

	conns := services.Connectors{
		Index:        index,
		Storage:      storage,
		Repositories: settings.Repositories,
	}
	if err := conns.Validate(); err != nil {
		return fail(err)
	}

	return &cli.Services{
		Update:      services.NewBatchDriver(conns, opts...),
		Creators:    services.NewCreatorFixer(index, opts...),
		History:     services.NewRunHistoryService(db.RunStore()),
		OpenRecords: openRecords,
		ReadFixes:   csv.ReadCreatorFixesFile,
	}, closeAll, nil
}

func openRecords(path string) (driving.RecordSource, func() error, error) {
	r, err := csv.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

func buildIndex(cfg file.IndexSettings, db *sqlite.Store) (driven.IndexConnector, error) {
	switch cfg.Backend {
	case file.IndexMemory:
		logger.Warn("Using the in-memory index; updates are lost on exit")
		return indexmem.NewIndex(), nil
	case file.IndexSQLite:
		return db.IndexConnector(), nil
	case file.IndexSolr:
		x, err := solr.NewIndex(solr.Config{
			BaseURL: cfg.SolrURL,
			Core:    cfg.SolrCore,
			Timeout: cfg.SolrTimeout,
			Rows:    cfg.SolrRows,
		})
		if err != nil {
			return nil, fmt.Errorf("creating solr index: %w", err)
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

func buildStorage(ctx context.Context, s file.Settings) (driven.StorageConnector, error) {
	cfg := s.Storage

	var base driven.StorageConnector
	switch cfg.Backend {
	case file.StorageMemory:
		logger.Warn("Using in-memory storage; nothing will be moved on disk")
		base = blobmem.NewStore(s.Repositories.IDs()...)
	case file.StorageLocal:
		st, err := local.NewStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("opening local storage: %w", err)
		}
		base = st
	case file.StorageMinio:
		client, err := blobminio.NewClient(blobminio.ClientConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Secure:    cfg.Secure,
		})
		if err != nil {
			return nil, err
		}
		base = blobminio.NewStore(client, cfg.Buckets, cfg.Prefix)
	case file.StorageS3:
		client, err := blobs3.NewClient(ctx, blobs3.ClientConfig{
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		base = blobs3.NewStore(client, cfg.Buckets, cfg.Prefix)
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}

	return throttle.New(base, throttle.Config{
		RequestsPerSecond: cfg.RateLimit,
		BurstSize:         cfg.Burst,
	}), nil
}
