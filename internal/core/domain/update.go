package domain

// UpdateOp is the operation applied to one field of an index record.
type UpdateOp int

const (
	// OpSet replaces the stored value of the field.
	OpSet UpdateOp = iota + 1

	// OpDelete clears the field from the stored record.
	OpDelete
)

// String returns the operation name.
func (o UpdateOp) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FieldUpdate is the change to a single field.
type FieldUpdate struct {
	Op    UpdateOp
	Value string
}

// PartialUpdate is a per-document change set with three states per field:
// absent (leave unchanged), set (replace with Value) and delete (clear).
// The zero value is an empty update ready to use.
type PartialUpdate struct {
	fields map[Field]FieldUpdate
}

// NewPartialUpdate creates an update that carries the document identifier.
func NewPartialUpdate(id string) PartialUpdate {
	u := PartialUpdate{}
	u.Set(FieldID, id)
	return u
}

// Set records that the field should be replaced with value.
func (u *PartialUpdate) Set(f Field, value string) {
	u.put(f, FieldUpdate{Op: OpSet, Value: value})
}

// Delete records that the field should be cleared.
func (u *PartialUpdate) Delete(f Field) {
	u.put(f, FieldUpdate{Op: OpDelete})
}

// Unset removes any pending change for the field.
func (u *PartialUpdate) Unset(f Field) {
	delete(u.fields, f)
}

func (u *PartialUpdate) put(f Field, fu FieldUpdate) {
	if u.fields == nil {
		u.fields = make(map[Field]FieldUpdate)
	}
	u.fields[f] = fu
}

// Get returns the pending change for a field.
func (u PartialUpdate) Get(f Field) (FieldUpdate, bool) {
	fu, ok := u.fields[f]
	return fu, ok
}

// ID returns the identifier carried by the update, if any.
func (u PartialUpdate) ID() (string, bool) {
	fu, ok := u.fields[FieldID]
	if !ok || fu.Op != OpSet {
		return "", false
	}
	return fu.Value, true
}

// Fields returns the fields with pending changes in canonical order.
func (u PartialUpdate) Fields() []Field {
	out := make([]Field, 0, len(u.fields))
	for _, f := range Fields {
		if _, ok := u.fields[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of fields with pending changes, id included.
func (u PartialUpdate) Len() int {
	return len(u.fields)
}

// Clone returns an independent copy of the update.
func (u PartialUpdate) Clone() PartialUpdate {
	c := PartialUpdate{}
	for f, fu := range u.fields {
		c.put(f, fu)
	}
	return c
}
