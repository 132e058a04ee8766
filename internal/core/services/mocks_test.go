package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	blobmem "github.com/custodia-labs/archie/internal/adapters/driven/blobstore/memory"
	indexmem "github.com/custodia-labs/archie/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/archie/internal/core/domain"
)

// --- Test doubles wrapping the in-memory adapters ---

type storageCall struct {
	op     string
	source string
	target string
	path   string
}

// recordingStorage records every storage call and can inject failures.
type recordingStorage struct {
	*blobmem.Store
	calls      []storageCall
	failMove   map[string]error
	failExists error
}

func newRecordingStorage(repositories ...string) *recordingStorage {
	return &recordingStorage{
		Store:    blobmem.NewStore(repositories...),
		failMove: make(map[string]error),
	}
}

func (s *recordingStorage) Exists(ctx context.Context, repository, path string) (bool, error) {
	s.calls = append(s.calls, storageCall{op: "exists", source: repository, path: path})
	if s.failExists != nil {
		return false, s.failExists
	}
	return s.Store.Exists(ctx, repository, path)
}

func (s *recordingStorage) Move(ctx context.Context, source, target, path string) error {
	s.calls = append(s.calls, storageCall{op: "move", source: source, target: target, path: path})
	if err, ok := s.failMove[path]; ok {
		return err
	}
	return s.Store.Move(ctx, source, target, path)
}

func (s *recordingStorage) moves() []storageCall {
	var out []storageCall
	for _, c := range s.calls {
		if c.op == "move" {
			out = append(out, c)
		}
	}
	return out
}

// faultyIndex records staged updates and can fail on demand.
type faultyIndex struct {
	*indexmem.Index
	updates     []domain.PartialUpdate
	addErr      error
	commitErr   error
	commitCalls int
	rollbacks   int
}

func newFaultyIndex() *faultyIndex {
	return &faultyIndex{Index: indexmem.NewIndex()}
}

func (x *faultyIndex) AddOrUpdate(ctx context.Context, id string, update domain.PartialUpdate) error {
	if x.addErr != nil {
		return x.addErr
	}
	x.updates = append(x.updates, update.Clone())
	return x.Index.AddOrUpdate(ctx, id, update)
}

func (x *faultyIndex) Commit(ctx context.Context) error {
	x.commitCalls++
	if x.commitErr != nil {
		return x.commitErr
	}
	return x.Index.Commit(ctx)
}

func (x *faultyIndex) Rollback(ctx context.Context) error {
	x.rollbacks++
	return x.Index.Rollback(ctx)
}

// --- Helpers ---

func testRepositories(t *testing.T, ids ...string) domain.RepositoryList {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"public", "private"}
	}
	list, err := domain.NewRepositoryList(ids...)
	require.NoError(t, err)
	return list
}

// testDoc builds a document from field/value pairs.
func testDoc(id string, pairs ...string) domain.Document {
	doc := domain.NewDocument(id)
	for i := 0; i+1 < len(pairs); i += 2 {
		doc.Set(domain.Field(pairs[i]), pairs[i+1])
	}
	return doc
}

type fixture struct {
	index   *faultyIndex
	storage *recordingStorage
	conns   Connectors
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	index := newFaultyIndex()
	storage := newRecordingStorage("public", "private")
	return &fixture{
		index:   index,
		storage: storage,
		conns: Connectors{
			Index:        index,
			Storage:      storage,
			Repositories: testRepositories(t),
		},
	}
}

// withRunID fixes the run identifier.
func withRunID(id string) Option {
	return func(c *runConfig) {
		c.newRunID = func() string { return id }
	}
}
