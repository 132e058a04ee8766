package domain

import (
	"fmt"
	"strings"
)

// Field names a metadata field of an archive document.
type Field string

// Document fields.
const (
	FieldID              Field = "id"
	FieldTitle           Field = "title"
	FieldDate            Field = "date"
	FieldCreator         Field = "creator"
	FieldDescription     Field = "description"
	FieldType            Field = "type"
	FieldFormat          Field = "format"
	FieldSubject         Field = "subject"
	FieldStorageLocation Field = "storage-location"
	FieldCollectionPath  Field = "collection-path"
	FieldSortCode        Field = "sort-code"
	FieldAccessRights    Field = "access-rights"
)

// Fields lists every document field in canonical order.
// The order is the order in which updates are written to the index.
var Fields = []Field{
	FieldID,
	FieldTitle,
	FieldDate,
	FieldCreator,
	FieldDescription,
	FieldType,
	FieldFormat,
	FieldSubject,
	FieldStorageLocation,
	FieldCollectionPath,
	FieldSortCode,
	FieldAccessRights,
}

// indexNames maps fields to the names used in the search index schema.
var indexNames = map[Field]string{
	FieldID:              "id",
	FieldTitle:           "dcTitle",
	FieldDate:            "dcDate",
	FieldCreator:         "dcCreator",
	FieldDescription:     "dcDescription",
	FieldType:            "dcType",
	FieldFormat:          "dcFormat",
	FieldSubject:         "dcSubject",
	FieldStorageLocation: "storageLocation",
	FieldCollectionPath:  "dcIsPartOf",
	FieldSortCode:        "sortCode",
	FieldAccessRights:    "dcAccessRights",
}

// IsValid returns true if the field is one of the known document fields.
func (f Field) IsValid() bool {
	_, ok := indexNames[f]
	return ok
}

// IndexName returns the field name used by the search index schema.
func (f Field) IndexName() string {
	return indexNames[f]
}

// String returns the canonical field name.
func (f Field) String() string {
	return string(f)
}

// ParseField resolves a canonical field name ("access-rights") or an index
// field name ("dcAccessRights"), ignoring case and surrounding whitespace.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		if strings.EqualFold(name, string(f)) || strings.EqualFold(name, f.IndexName()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
}

// Document is an archive document as described by an external record source.
// A field missing from Values is null: it has no value in the description and
// must not be touched in the index.
type Document struct {
	// ID is the unique, immutable identifier.
	ID string

	// Values holds the raw (untrimmed) field values keyed by field.
	// FieldID is never stored here; use ID.
	Values map[Field]string
}

// NewDocument creates a document with the given identifier and no fields.
func NewDocument(id string) Document {
	return Document{ID: id, Values: make(map[Field]string)}
}

// DocumentFromRecord builds a document from a field-name/value mapping such
// as a CSV row. Names may be canonical or index names. Empty cells are null.
// The id column is required.
func DocumentFromRecord(record map[string]string) (Document, error) {
	doc := Document{Values: make(map[Field]string, len(record))}
	for name, value := range record {
		field, err := ParseField(name)
		if err != nil {
			return Document{}, err
		}
		if field == FieldID {
			doc.ID = strings.TrimSpace(value)
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		doc.Values[field] = value
	}
	if doc.ID == "" {
		return Document{}, fmt.Errorf("%w: record has no id", ErrInvalidInput)
	}
	return doc, nil
}

// Value returns the raw value of a field and whether it is set.
func (d Document) Value(f Field) (string, bool) {
	if f == FieldID {
		return d.ID, d.ID != ""
	}
	v, ok := d.Values[f]
	return v, ok
}

// Set assigns a field value. Setting FieldID replaces the identifier.
func (d *Document) Set(f Field, value string) {
	if f == FieldID {
		d.ID = value
		return
	}
	if d.Values == nil {
		d.Values = make(map[Field]string)
	}
	d.Values[f] = value
}

// Format returns the trimmed primary artifact format, if any.
func (d Document) Format() (string, bool) {
	return d.trimmed(FieldFormat)
}

// AccessRights returns the trimmed access-rights value, if any.
func (d Document) AccessRights() (string, bool) {
	return d.trimmed(FieldAccessRights)
}

// HasPrimaryArtifact returns true if the document declares a format,
// meaning an original artifact is expected to exist in storage.
func (d Document) HasPrimaryArtifact() bool {
	_, ok := d.Format()
	return ok
}

func (d Document) trimmed(f Field) (string, bool) {
	v, ok := d.Values[f]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// IndexRecord is a stored index record as returned by a query.
// Fields may hold several values (e.g. more than one creator).
type IndexRecord struct {
	ID     string
	Values map[Field][]string
}

// First returns the first value of a field, if any.
func (r IndexRecord) First(f Field) (string, bool) {
	vs := r.Values[f]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
