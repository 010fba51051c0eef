package codec

import (
	"fmt"

	"github.com/vadimbarashkov/base62-shortener/internal/entity"
	"github.com/vadimbarashkov/base62-shortener/pkg/base62"
)

// Base62 is the positional base-62 codec. The zero value is ready to use.
type Base62 struct{}

func (Base62) Encode(id int64) (string, error) {
	code, err := base62.Encode(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	return code, nil
}

func (Base62) Decode(code string) (int64, error) {
	id, err := base62.Decode(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	return id, nil
}
