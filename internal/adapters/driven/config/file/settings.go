package file

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Index backends.
const (
	IndexMemory = "memory"
	IndexSQLite = "sqlite"
	IndexSolr   = "solr"
)

// Storage backends.
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageMinio  = "minio"
	StorageS3     = "s3"
)

// Configuration keys.
const (
	KeyRepositories = "repositories"
	KeyDataDir      = "data_dir"

	KeyIndexBackend     = "index.backend"
	KeyIndexSolrURL     = "index.solr_url"
	KeyIndexSolrCore    = "index.solr_core"
	KeyIndexSolrTimeout = "index.solr_timeout"
	KeyIndexSolrRows    = "index.solr_rows"

	KeyStorageBackend   = "storage.backend"
	KeyStorageRoot      = "storage.root"
	KeyStorageEndpoint  = "storage.endpoint"
	KeyStorageRegion    = "storage.region"
	KeyStorageAccessKey = "storage.access_key"
	KeyStorageSecretKey = "storage.secret_key"
	KeyStorageSecure    = "storage.secure"
	KeyStoragePathStyle = "storage.path_style"
	KeyStoragePrefix    = "storage.prefix"
	KeyStorageRate      = "storage.rate_limit"
	KeyStorageBurst     = "storage.burst"
	keyStorageBuckets   = "storage.buckets."

	KeyLockRedisAddr     = "lock.redis_addr"
	KeyLockRedisPassword = "lock.redis_password"
	KeyLockRedisDB       = "lock.redis_db"
	KeyLockNamespace     = "lock.namespace"
	KeyLockTTL           = "lock.ttl"
	KeyLockName          = "lock.name"

	keyErrors = "errors."
)

// DefaultRepositories is the access-rights tier list used when none is
// configured.
var DefaultRepositories = []string{"public", "private"}

// Settings is the typed view of the configuration file.
type Settings struct {
	Repositories domain.RepositoryList
	DataDir      string
	Index        IndexSettings
	Storage      StorageSettings
	Lock         LockSettings
	ErrorPolicy  domain.ErrorPolicy
}

// IndexSettings selects and configures the index connector.
type IndexSettings struct {
	Backend     string
	SolrURL     string
	SolrCore    string
	SolrTimeout time.Duration
	SolrRows    int
}

// StorageSettings selects and configures the storage connector.
type StorageSettings struct {
	Backend   string
	Root      string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
	PathStyle bool
	Prefix    string

	// Buckets maps repository identifiers to bucket names. Repositories
	// without an entry use their identifier.
	Buckets map[string]string

	// RateLimit is the maximum storage requests per second. Zero disables
	// throttling.
	RateLimit float64
	Burst     int
}

// LockSettings configures the external run lock. An empty RedisAddr
// disables it.
type LockSettings struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Namespace     string
	TTL           time.Duration
	Name          string
}

// Enabled reports whether an external lock is configured.
func (l LockSettings) Enabled() bool {
	return l.RedisAddr != ""
}

// LoadSettings reads and validates Settings from a config store.
//
//nolint:gocyclo // Flat sequence of key lookups
func LoadSettings(store driven.ConfigStore) (Settings, error) {
	var s Settings

	repos := store.GetStringSlice(KeyRepositories)
	if len(repos) == 0 {
		repos = DefaultRepositories
	}
	list, err := domain.NewRepositoryList(repos...)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", KeyRepositories, err)
	}
	s.Repositories = list
	s.DataDir = store.GetString(KeyDataDir)

	// Index
	s.Index = IndexSettings{
		Backend:  stringOr(store, KeyIndexBackend, IndexSQLite),
		SolrURL:  store.GetString(KeyIndexSolrURL),
		SolrCore: store.GetString(KeyIndexSolrCore),
		SolrRows: store.GetInt(KeyIndexSolrRows),
	}
	if s.Index.SolrTimeout, err = duration(store, KeyIndexSolrTimeout); err != nil {
		return Settings{}, err
	}
	switch s.Index.Backend {
	case IndexMemory, IndexSQLite:
	case IndexSolr:
		if s.Index.SolrCore == "" {
			return Settings{}, fmt.Errorf("%w: %s is required for the solr index", domain.ErrInvalidInput, KeyIndexSolrCore)
		}
	default:
		return Settings{}, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, s.Index.Backend)
	}

	// Storage
	s.Storage = StorageSettings{
		Backend:   stringOr(store, KeyStorageBackend, StorageLocal),
		Root:      store.GetString(KeyStorageRoot),
		Endpoint:  store.GetString(KeyStorageEndpoint),
		Region:    store.GetString(KeyStorageRegion),
		AccessKey: store.GetString(KeyStorageAccessKey),
		SecretKey: store.GetString(KeyStorageSecretKey),
		Secure:    store.GetBool(KeyStorageSecure),
		PathStyle: store.GetBool(KeyStoragePathStyle),
		Prefix:    store.GetString(KeyStoragePrefix),
		RateLimit: store.GetFloat(KeyStorageRate),
		Burst:     store.GetInt(KeyStorageBurst),
		Buckets:   make(map[string]string),
	}
	for _, key := range store.Keys(keyStorageBuckets) {
		repo := strings.TrimPrefix(key, keyStorageBuckets)
		id, ok := list.Resolve(repo)
		if !ok {
			return Settings{}, fmt.Errorf("%w: bucket configured for %q", domain.ErrUnknownRepository, repo)
		}
		s.Storage.Buckets[id] = store.GetString(key)
	}
	if s.Storage.RateLimit < 0 {
		return Settings{}, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeyStorageRate)
	}
	switch s.Storage.Backend {
	case StorageMemory, StorageS3:
	case StorageLocal:
		if s.Storage.Root == "" {
			return Settings{}, fmt.Errorf("%w: %s is required for local storage", domain.ErrInvalidInput, KeyStorageRoot)
		}
	case StorageMinio:
		if s.Storage.Endpoint == "" {
			return Settings{}, fmt.Errorf("%w: %s is required for minio storage", domain.ErrInvalidInput, KeyStorageEndpoint)
		}
	default:
		return Settings{}, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, s.Storage.Backend)
	}

	// Lock
	s.Lock = LockSettings{
		RedisAddr:     store.GetString(KeyLockRedisAddr),
		RedisPassword: store.GetString(KeyLockRedisPassword),
		RedisDB:       store.GetInt(KeyLockRedisDB),
		Namespace:     stringOr(store, KeyLockNamespace, "archie"),
		Name:          store.GetString(KeyLockName),
	}
	if s.Lock.TTL, err = duration(store, KeyLockTTL); err != nil {
		return Settings{}, err
	}

	// Error policy
	s.ErrorPolicy = domain.DefaultErrorPolicy()
	for _, key := range store.Keys(keyErrors) {
		kind := domain.ErrorKind(strings.TrimPrefix(key, keyErrors))
		if !knownKind(kind) {
			return Settings{}, fmt.Errorf("%w: unknown error kind in %s", domain.ErrInvalidInput, key)
		}
		action, err := domain.ParseAction(store.GetString(key))
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", key, err)
		}
		if action == domain.ActionSkip && !kind.Skippable() {
			return Settings{}, fmt.Errorf("%w: %s errors always abort", domain.ErrInvalidInput, kind)
		}
		s.ErrorPolicy[kind] = action
	}

	return s, nil
}

func stringOr(store driven.ConfigStore, key, fallback string) string {
	if v := strings.TrimSpace(store.GetString(key)); v != "" {
		return v
	}
	return fallback
}

// duration parses a Go duration string. Unset keys are zero.
func duration(store driven.ConfigStore, key string) (time.Duration, error) {
	raw := store.GetString(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

func knownKind(kind domain.ErrorKind) bool {
	for _, k := range domain.ErrorKinds {
		if k == kind {
			return true
		}
	}
	return false
}
