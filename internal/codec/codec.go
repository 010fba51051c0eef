// Package codec provides the identifier/short-code conversions used by the
// use case layer.
package codec

import "fmt"

const (
	KindBase62 = "base62"
	KindSqids  = "sqids"
)

// Codec converts identifiers to short codes and back.
type Codec interface {
	Encode(id int64) (string, error)
	Decode(code string) (int64, error)
}

// New returns the codec selected by kind. An empty kind selects base62.
// alphabet and minLength only apply to sqids.
func New(kind, alphabet string, minLength int) (Codec, error) {
	const op = "codec.New"

	switch kind {
	case "", KindBase62:
		return Base62{}, nil
	case KindSqids:
		c, err := NewSqids(alphabet, minLength)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%s: unknown codec kind %q", op, kind)
	}
}
