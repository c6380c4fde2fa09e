package reconcile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_Equal(t *testing.T) {
	a := NewRow("id", 1, "name", "a")

	assert.True(t, a.Equal(NewRow("id", 1, "name", "a")))
	assert.True(t, a.Equal(NewRow("name", "a", "id", 1)), "column order does not matter")
	assert.False(t, a.Equal(NewRow("id", 1, "name", "b")))
	assert.False(t, a.Equal(NewRow("id", 1)))
	assert.False(t, a.Equal(NewRow("id", 1, "title", "a")))
	assert.False(t, a.Equal(NewRow("id", 1, "name", nil)))
}

func TestRow_ChangedColumns(t *testing.T) {
	ref := NewRow("id", 1, "name", "a", "age", 3)
	target := NewRow("id", 1, "name", "b", "age", 3)

	assert.Equal(t, []string{"name"}, ref.ChangedColumns(target))
	assert.Empty(t, ref.ChangedColumns(ref))
}

func TestRow_SetKeepsOrder(t *testing.T) {
	var r Row
	r.Set("b", Int(1))
	r.Set("a", Int(2))
	r.Set("b", Int(3))

	assert.Equal(t, []string{"b", "a"}, r.Columns())
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.True(t, v.Equal(Int(3)))
	assert.Equal(t, "{b=3, a=2}", r.String())
	assert.Equal(t, map[string]any{"a": int64(2), "b": int64(3)}, r.Map())
}

func TestRow_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewRow("id", 1, "name", "a", "note", nil))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"a","note":null}`, string(data))
}

func TestKeyedRowSet(t *testing.T) {
	set := NewKeyedRowSet("id")
	require.NoError(t, set.Add(NewRow("id", 10, "name", "j")))
	require.NoError(t, set.Add(NewRow("id", 2, "name", "b")))
	require.NoError(t, set.Add(NewRow("id", 7, "name", "g")))

	t.Run("Keys are ascending", func(t *testing.T) {
		keys := set.Keys()
		require.Len(t, keys, 3)
		assert.Equal(t, "2", keys[0].String())
		assert.Equal(t, "7", keys[1].String())
		assert.Equal(t, "10", keys[2].String())
	})

	t.Run("Duplicate key", func(t *testing.T) {
		err := set.Add(NewRow("id", 2, "name", "other"))
		assert.True(t, errors.Is(err, ErrDuplicateKey))
		assert.Equal(t, 3, set.Len())
	})

	t.Run("Integral float matches int key", func(t *testing.T) {
		row, ok := set.Get(Float(7))
		assert.True(t, ok)
		name, _ := row.Get("name")
		assert.Equal(t, "g", name.String())
	})

	t.Run("Missing key column", func(t *testing.T) {
		err := set.Add(NewRow("name", "x"))
		assert.True(t, errors.Is(err, ErrSchema))
	})

	t.Run("NULL key", func(t *testing.T) {
		err := set.Add(NewRow("id", nil, "name", "x"))
		assert.True(t, errors.Is(err, ErrSchema))
	})
}
