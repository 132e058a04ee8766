// Package solr provides an IndexConnector for an Apache Solr core using the
// JSON update and select handlers.
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Index implements the interfaces.
var (
	_ driven.IndexConnector  = (*Index)(nil)
	_ driven.IndexRollbacker = (*Index)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8983/solr"
	DefaultTimeout = 30 * time.Second
	DefaultRows    = 500
)

// Config holds configuration for the Solr index.
type Config struct {
	// BaseURL is the Solr base URL (default: http://localhost:8983/solr).
	BaseURL string

	// Core is the core or collection name. Required.
	Core string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Rows is the page size used by Find (default: 500).
	Rows int
}

// Index talks to one Solr core. Updates are sent as atomic "set" updates
// without committing; Commit issues an explicit commit. Auto-commit must be
// disabled on the core for the batch boundary to hold.
type Index struct {
	client  *http.Client
	coreURL string
	rows    int

	mu     sync.RWMutex
	closed bool
}

// selectResponse is the subset of a select handler response we read.
type selectResponse struct {
	Response struct {
		NumFound int              `json:"numFound"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
}

// NewIndex creates a Solr index connector.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Core == "" {
		return nil, fmt.Errorf("%w: solr core is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		coreURL: strings.TrimRight(cfg.BaseURL, "/") + "/" + url.PathEscape(cfg.Core),
		rows:    cfg.Rows,
	}, nil
}

// AddOrUpdate sends an atomic update for one document. Only the fields in
// update are touched.
func (x *Index) AddOrUpdate(ctx context.Context, id string, update domain.PartialUpdate) error {
	if err := x.checkOpen(); err != nil {
		return err
	}
	doc := atomicDocument(id, update)
	body, err := json.Marshal([]map[string]any{doc})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	return x.post(ctx, "/update", nil, body)
}

// atomicDocument builds the Solr atomic update for a partial update. Set
// fields become {"set": value}; deleted fields become {"set": null}.
func atomicDocument(id string, update domain.PartialUpdate) map[string]any {
	doc := map[string]any{domain.FieldID.IndexName(): id}
	for _, f := range update.Fields() {
		if f == domain.FieldID {
			continue
		}
		fu, _ := update.Get(f)
		var value any
		if fu.Op == domain.OpSet {
			value = fu.Value
		}
		doc[f.IndexName()] = map[string]any{"set": value}
	}
	return doc
}

// Commit makes every sent update durable and visible.
func (x *Index) Commit(ctx context.Context) error {
	if err := x.checkOpen(); err != nil {
		return err
	}
	return x.post(ctx, "/update", url.Values{"commit": {"true"}}, []byte("{}"))
}

// Rollback discards uncommitted updates on the core.
func (x *Index) Rollback(ctx context.Context) error {
	if err := x.checkOpen(); err != nil {
		return err
	}
	return x.post(ctx, "/update", nil, []byte(`{"rollback":{}}`))
}

// Find returns committed documents whose field holds value, following pages
// until every match is read.
func (x *Index) Find(ctx context.Context, field domain.Field, value string) ([]domain.IndexRecord, error) {
	if err := x.checkOpen(); err != nil {
		return nil, err
	}

	q := field.IndexName() + ":" + quote(value)
	var records []domain.IndexRecord
	for start := 0; ; start += x.rows {
		params := url.Values{
			"q":     {q},
			"wt":    {"json"},
			"sort":  {domain.FieldID.IndexName() + " asc"},
			"start": {strconv.Itoa(start)},
			"rows":  {strconv.Itoa(x.rows)},
		}
		var resp selectResponse
		if err := x.get(ctx, "/select", params, &resp); err != nil {
			return nil, err
		}
		for _, d := range resp.Response.Docs {
			records = append(records, toRecord(d))
		}
		if len(resp.Response.Docs) == 0 || start+len(resp.Response.Docs) >= resp.Response.NumFound {
			break
		}
	}
	return records, nil
}

// Close rejects further use. Uncommitted updates stay on the core.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	return nil
}

func (x *Index) checkOpen() error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return domain.ErrIndexClosed
	}
	return nil
}

func (x *Index) post(ctx context.Context, path string, params url.Values, body []byte) error {
	u := x.coreURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (x *Index) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.coreURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		body = []byte("failed to read response")
	}
	statusErr := fmt.Errorf("solr error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.Join(domain.ErrIndexUnavailable, statusErr)
	}
	return statusErr
}

// quote wraps a term in double quotes, escaping backslashes and quotes.
func quote(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(value) + `"`
}

// toRecord maps a Solr document to an IndexRecord, dropping unknown fields
// such as _version_.
func toRecord(d map[string]any) domain.IndexRecord {
	rec := domain.IndexRecord{Values: make(map[domain.Field][]string)}
	for name, raw := range d {
		f, err := domain.ParseField(name)
		if err != nil {
			continue
		}
		values := toStrings(raw)
		if f == domain.FieldID {
			if len(values) > 0 {
				rec.ID = values[0]
			}
			continue
		}
		rec.Values[f] = values
	}
	return rec
}

func toStrings(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(v)}
	}
}
