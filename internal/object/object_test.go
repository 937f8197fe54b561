package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPreservesInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("c", 3)
	r.Set("a", 4) // update keeps position

	assert.Equal(t, []string{"b", "a", "c"}, r.Keys())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, r.Len())
}

func TestRecordEachStops(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	var seen []string
	r.Each(func(key string, value any) bool {
		seen = append(seen, key)
		return false
	})
	assert.Equal(t, []string{"a"}, seen)
}

func TestRecordSnapshotIsCopy(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	snap := r.Snapshot()
	snap["a"] = 99
	v, _ := r.Get("a")
	assert.Equal(t, 1, v)
}

func TestAttributeSingle(t *testing.T) {
	var absent *Attribute
	assert.Nil(t, absent.Single())
	assert.Nil(t, (&Attribute{Name: "x"}).Single())
	assert.Equal(t, "v", (&Attribute{Name: "x", Values: []any{"v", "w"}}).Single())
}

func TestObjectLookup(t *testing.T) {
	o := &Object{
		Class: "account",
		Attributes: []Attribute{
			{Name: UID, Values: []any{"42"}},
			{Name: "mail", Values: []any{"a@b.com"}},
		},
		Embedded: map[string][]Embedded{
			"group": {{Class: "group"}},
		},
	}
	assert.Equal(t, "42", o.UIDValue())
	assert.Nil(t, o.AttributeByName("missing"))
	assert.Len(t, o.Rows("group"), 1)
	assert.Nil(t, o.Rows("role"))
}

func TestEntitlementRoundTrip(t *testing.T) {
	encoded := EncodeEntitlement(7, "admins")
	assert.Equal(t, "7~admins", encoded)
	assert.Equal(t, "admins", StripEntitlement(encoded))
}

func TestStripEntitlementWithoutPrefix(t *testing.T) {
	assert.Equal(t, "admins", StripEntitlement("admins"))
	assert.Equal(t, "a~b", StripEntitlement("a~b"))
	assert.Equal(t, "~x", StripEntitlement("~x"))
}
