package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialUpdate_ZeroValue(t *testing.T) {
	var u PartialUpdate
	assert.Equal(t, 0, u.Len())
	assert.Empty(t, u.Fields())

	_, ok := u.ID()
	assert.False(t, ok)

	u.Set(FieldTitle, "x")
	assert.Equal(t, 1, u.Len())
}

func TestPartialUpdate_ThreeStates(t *testing.T) {
	u := NewPartialUpdate("D1")
	u.Set(FieldCreator, "Manor")
	u.Delete(FieldDescription)

	id, ok := u.ID()
	assert.True(t, ok)
	assert.Equal(t, "D1", id)

	set, ok := u.Get(FieldCreator)
	assert.True(t, ok)
	assert.Equal(t, FieldUpdate{Op: OpSet, Value: "Manor"}, set)

	del, ok := u.Get(FieldDescription)
	assert.True(t, ok)
	assert.Equal(t, OpDelete, del.Op)

	_, ok = u.Get(FieldTitle)
	assert.False(t, ok, "absent field means leave unchanged")
}

func TestPartialUpdate_FieldsCanonicalOrder(t *testing.T) {
	var u PartialUpdate
	u.Set(FieldAccessRights, "public")
	u.Set(FieldTitle, "t")
	u.Set(FieldID, "D1")
	u.Delete(FieldCreator)

	assert.Equal(t, []Field{FieldID, FieldTitle, FieldCreator, FieldAccessRights}, u.Fields())
}

func TestPartialUpdate_LastWriteWins(t *testing.T) {
	var u PartialUpdate
	u.Delete(FieldCreator)
	u.Set(FieldCreator, "new")

	fu, _ := u.Get(FieldCreator)
	assert.Equal(t, OpSet, fu.Op)

	u.Unset(FieldCreator)
	_, ok := u.Get(FieldCreator)
	assert.False(t, ok)
}

func TestPartialUpdate_Clone(t *testing.T) {
	u := NewPartialUpdate("D1")
	c := u.Clone()
	c.Set(FieldTitle, "changed")

	_, ok := u.Get(FieldTitle)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestUpdateOp_String(t *testing.T) {
	assert.Equal(t, "set", OpSet.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "unknown", UpdateOp(0).String())
}
