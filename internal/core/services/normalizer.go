package services

import (
	"strings"

	"github.com/custodia-labs/archie/internal/core/domain"
)

// Normalizer turns a document description into the partial update applied to
// its index record.
type Normalizer struct{}

// NewNormalizer creates a new normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize includes every non-null field, trimmed of surrounding whitespace.
// Null fields are left out so the stored values stay untouched. The
// identifier is always included.
func (n *Normalizer) Normalize(doc domain.Document) domain.PartialUpdate {
	update := domain.NewPartialUpdate(strings.TrimSpace(doc.ID))
	for _, field := range domain.Fields {
		if field == domain.FieldID {
			continue
		}
		value, ok := doc.Values[field]
		if !ok {
			continue
		}
		update.Set(field, strings.TrimSpace(value))
	}
	return update
}
