package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

func settingsFrom(t *testing.T, content string) (Settings, error) {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, content)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return LoadSettings(store)
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := settingsFrom(t, `
[storage]
root = "/srv/archive"
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"public", "private"}, s.Repositories.IDs())
	assert.Equal(t, IndexSQLite, s.Index.Backend)
	assert.Equal(t, StorageLocal, s.Storage.Backend)
	assert.Equal(t, "/srv/archive", s.Storage.Root)
	assert.False(t, s.Lock.Enabled())
	assert.Equal(t, "archie", s.Lock.Namespace)
	assert.Equal(t, domain.DefaultErrorPolicy(), s.ErrorPolicy)
}

func TestLoadSettings_Full(t *testing.T) {
	s, err := settingsFrom(t, `
repositories = ["public", "restricted", "private"]
data_dir = "/var/lib/archie"

[index]
backend = "solr"
solr_url = "http://solr:8983/solr"
solr_core = "archive"
solr_timeout = "5s"
solr_rows = 100

[storage]
backend = "minio"
endpoint = "minio:9000"
access_key = "ak"
secret_key = "sk"
secure = true
prefix = "artifacts"
rate_limit = 20
burst = 5

[storage.buckets]
public = "archive-public"

[lock]
redis_addr = "redis:6379"
redis_db = 2
namespace = "prod"
ttl = "1m"
name = "nightly"

[errors]
index = "skip"
validation = "skip"
storage = "abort"
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"public", "restricted", "private"}, s.Repositories.IDs())
	assert.Equal(t, "/var/lib/archie", s.DataDir)
	assert.Equal(t, IndexSettings{
		Backend:     IndexSolr,
		SolrURL:     "http://solr:8983/solr",
		SolrCore:    "archive",
		SolrTimeout: 5 * time.Second,
		SolrRows:    100,
	}, s.Index)
	assert.Equal(t, StorageMinio, s.Storage.Backend)
	assert.Equal(t, "minio:9000", s.Storage.Endpoint)
	assert.True(t, s.Storage.Secure)
	assert.Equal(t, "artifacts", s.Storage.Prefix)
	assert.Equal(t, map[string]string{"public": "archive-public"}, s.Storage.Buckets)
	assert.InDelta(t, 20.0, s.Storage.RateLimit, 1e-9)
	assert.Equal(t, 5, s.Storage.Burst)
	assert.True(t, s.Lock.Enabled())
	assert.Equal(t, 2, s.Lock.RedisDB)
	assert.Equal(t, "prod", s.Lock.Namespace)
	assert.Equal(t, time.Minute, s.Lock.TTL)
	assert.Equal(t, "nightly", s.Lock.Name)
	assert.Equal(t, domain.ActionSkip, s.ErrorPolicy.ActionFor(domain.KindIndex))
	assert.Equal(t, domain.ActionSkip, s.ErrorPolicy.ActionFor(domain.KindValidation))
	assert.Equal(t, domain.ActionAbort, s.ErrorPolicy.ActionFor(domain.KindStorage))
	assert.Equal(t, domain.ActionAbort, s.ErrorPolicy.ActionFor(domain.KindInput))
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "duplicate repositories",
			content: `repositories = ["public", "PUBLIC"]`,
			want:    domain.ErrInvalidInput,
		},
		{
			name: "unknown index backend",
			content: `[index]
backend = "elastic"
[storage]
backend = "memory"`,
			want: domain.ErrUnsupportedType,
		},
		{
			name: "solr without core",
			content: `[index]
backend = "solr"
[storage]
backend = "memory"`,
			want: domain.ErrInvalidInput,
		},
		{
			name:    "local storage without root",
			content: `[index]` + "\n" + `backend = "memory"`,
			want:    domain.ErrInvalidInput,
		},
		{
			name: "minio without endpoint",
			content: `[storage]
backend = "minio"`,
			want: domain.ErrInvalidInput,
		},
		{
			name: "unknown storage backend",
			content: `[storage]
backend = "ftp"`,
			want: domain.ErrUnsupportedType,
		},
		{
			name: "bucket for unknown repository",
			content: `[storage]
backend = "s3"
[storage.buckets]
secret = "b"`,
			want: domain.ErrUnknownRepository,
		},
		{
			name: "negative rate",
			content: `[storage]
backend = "memory"
rate_limit = -1`,
			want: domain.ErrInvalidInput,
		},
		{
			name: "bad duration",
			content: `[storage]
backend = "memory"
[lock]
ttl = "soon"`,
			want: domain.ErrInvalidInput,
		},
		{
			name: "unknown error kind",
			content: `[storage]
backend = "memory"
[errors]
network = "skip"`,
			want: domain.ErrInvalidInput,
		},
		{
			name: "unknown error action",
			content: `[storage]
backend = "memory"
[errors]
storage = "retry"`,
			want: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := settingsFrom(t, tt.content)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadSettings_UnskippableKinds(t *testing.T) {
	for _, kind := range []string{"storage", "interrupted"} {
		t.Run(kind, func(t *testing.T) {
			_, err := settingsFrom(t, `
[storage]
backend = "memory"
[errors]
`+kind+` = "skip"
`)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), kind+" errors always abort")
		})
	}
}
