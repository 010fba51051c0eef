package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		alphabet  string
		minLength int
		want      any
		wantErr   bool
	}{
		{name: "default", want: Base62{}},
		{name: "base62", kind: KindBase62, want: Base62{}},
		{name: "sqids", kind: KindSqids, minLength: 5, want: &Sqids{}},
		{name: "sqids bad alphabet", kind: KindSqids, alphabet: "ab", wantErr: true},
		{name: "sqids bad min length", kind: KindSqids, minLength: 1000, wantErr: true},
		{name: "unknown", kind: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.kind, tt.alphabet, tt.minLength)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}

			assert.NoError(t, err)
			assert.IsType(t, tt.want, c)
		})
	}
}

func TestBase62(t *testing.T) {
	var c Base62

	t.Run("encode", func(t *testing.T) {
		code, err := c.Encode(62)

		assert.NoError(t, err)
		assert.Equal(t, "10", code)
	})

	t.Run("encode negative", func(t *testing.T) {
		code, err := c.Encode(-1)

		assert.ErrorIs(t, err, entity.ErrInvalidInput)
		assert.Empty(t, code)
	})

	t.Run("decode", func(t *testing.T) {
		id, err := c.Decode("z")

		assert.NoError(t, err)
		assert.Equal(t, int64(61), id)
	})

	t.Run("decode invalid", func(t *testing.T) {
		for _, code := range []string{"", "a-b", "007", "zzzzzzzzzzzz"} {
			id, err := c.Decode(code)

			assert.ErrorIs(t, err, entity.ErrInvalidInput, code)
			assert.Zero(t, id)
		}
	})
}

func TestSqids(t *testing.T) {
	c, err := NewSqids("", 6)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		for _, id := range []int64{0, 1, 61, 62, 1 << 32, math.MaxInt64} {
			code, err := c.Encode(id)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(code), 6)

			got, err := c.Decode(code)
			require.NoError(t, err)
			assert.Equal(t, id, got)
		}
	})

	t.Run("distinct codes", func(t *testing.T) {
		seen := make(map[string]int64)
		for id := int64(0); id < 5000; id++ {
			code, err := c.Encode(id)
			require.NoError(t, err)

			prev, dup := seen[code]
			require.False(t, dup, "ids %d and %d share code %q", prev, id, code)
			seen[code] = id
		}
	})

	t.Run("encode negative", func(t *testing.T) {
		_, err := c.Encode(-7)

		assert.ErrorIs(t, err, entity.ErrInvalidInput)
	})

	t.Run("decode rejects garbage", func(t *testing.T) {
		for _, code := range []string{"", "!!!!!!", "a b c d"} {
			_, err := c.Decode(code)

			assert.ErrorIs(t, err, entity.ErrInvalidInput, code)
		}
	})

	t.Run("decode rejects multi number codes", func(t *testing.T) {
		code, err := c.sq.Encode([]uint64{1, 2})
		require.NoError(t, err)

		_, err = c.Decode(code)

		assert.ErrorIs(t, err, entity.ErrInvalidInput)
	})
}
