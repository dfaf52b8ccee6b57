package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSnapshot struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

func TestStore(t *testing.T) {
	t.Run("Save then Load round-trips", func(t *testing.T) {
		s, err := NewStore(t.TempDir(), "buyit")
		require.NoError(t, err)

		in := testSnapshot{Items: []string{"a", "b"}, Count: 2}
		require.NoError(t, s.Save("cart", in))

		var out testSnapshot
		require.NoError(t, s.Load("cart", &out))
		assert.Equal(t, in, out)
	})

	t.Run("Load missing key", func(t *testing.T) {
		s, err := NewStore(t.TempDir(), "buyit")
		require.NoError(t, err)

		var out testSnapshot
		assert.ErrorIs(t, s.Load("cart", &out), ErrNotFound)
	})

	t.Run("Save overwrites previous snapshot", func(t *testing.T) {
		s, err := NewStore(t.TempDir(), "buyit")
		require.NoError(t, err)

		require.NoError(t, s.Save("cart", testSnapshot{Count: 1}))
		require.NoError(t, s.Save("cart", testSnapshot{Count: 2}))

		var out testSnapshot
		require.NoError(t, s.Load("cart", &out))
		assert.Equal(t, 2, out.Count)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		s, err := NewStore(t.TempDir(), "buyit")
		require.NoError(t, err)

		require.NoError(t, s.Save("cart", testSnapshot{}))
		assert.NoError(t, s.Delete("cart"))
		assert.NoError(t, s.Delete("cart"))

		var out testSnapshot
		assert.ErrorIs(t, s.Load("cart", &out), ErrNotFound)
	})
}

func TestTokenStore(t *testing.T) {
	t.Run("Round-trip", func(t *testing.T) {
		ts, err := NewTokenStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, ts.Save("tok-abc"))
		got, err := ts.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok-abc", got)
	})

	t.Run("Missing token loads empty", func(t *testing.T) {
		ts, err := NewTokenStore(t.TempDir())
		require.NoError(t, err)

		got, err := ts.Load()
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("Clear removes token", func(t *testing.T) {
		ts, err := NewTokenStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, ts.Save("tok-abc"))
		require.NoError(t, ts.Clear())
		require.NoError(t, ts.Clear())

		got, err := ts.Load()
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})
}
