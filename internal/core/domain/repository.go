package domain

import (
	"fmt"
	"strings"
)

// RepositoryList is the ordered list of storage repositories. Each repository
// is an access-rights tier; a document's access-rights value names the
// repository its artifacts belong in. The order is the tie-break used when
// locating an artifact, so the list is never reordered.
type RepositoryList struct {
	ids []string
}

// NewRepositoryList validates and builds a repository list.
// Identifiers are trimmed; empty or case-insensitively duplicate identifiers
// are rejected.
func NewRepositoryList(ids ...string) (RepositoryList, error) {
	if len(ids) == 0 {
		return RepositoryList{}, fmt.Errorf("%w: no repositories configured", ErrInvalidInput)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return RepositoryList{}, fmt.Errorf("%w: empty repository identifier", ErrInvalidInput)
		}
		for _, existing := range out {
			if strings.EqualFold(existing, id) {
				return RepositoryList{}, fmt.Errorf("%w: duplicate repository %q", ErrInvalidInput, id)
			}
		}
		out = append(out, id)
	}
	return RepositoryList{ids: out}, nil
}

// IDs returns the repository identifiers in search order.
func (l RepositoryList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// Len returns the number of repositories.
func (l RepositoryList) Len() int {
	return len(l.ids)
}

// Resolve matches an access-rights value to a configured repository,
// ignoring case, and returns the configured identifier.
func (l RepositoryList) Resolve(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, id := range l.ids {
		if strings.EqualFold(id, value) {
			return id, true
		}
	}
	return "", false
}

// SameRepository reports whether two repository identifiers are equal,
// ignoring case.
func SameRepository(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
