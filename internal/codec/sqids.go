package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/sqids/sqids-go"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

var errNotCanonical = errors.New("sqids: not a canonical code")

// Sqids produces non-sequential looking codes. Unlike Base62 the codes are
// padded to a minimum length and shuffled by the alphabet order.
type Sqids struct {
	sq *sqids.Sqids
}

// NewSqids builds a Sqids codec. An empty alphabet selects the library
// default.
func NewSqids(alphabet string, minLength int) (*Sqids, error) {
	const op = "codec.NewSqids"

	if minLength < 0 || minLength > math.MaxUint8 {
		return nil, fmt.Errorf("%s: min length %d out of range", op, minLength)
	}

	sq, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Sqids{sq: sq}, nil
}

func (c *Sqids) Encode(id int64) (string, error) {
	const op = "codec.Sqids.Encode"

	if id < 0 {
		return "", fmt.Errorf("%s: %w: negative value %d", op, entity.ErrInvalidInput, id)
	}

	code, err := c.sq.Encode([]uint64{uint64(id)})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrInvalidInput, err)
	}

	return code, nil
}

// Decode accepts only codes that Encode would produce, so every identifier
// has exactly one accepted code.
func (c *Sqids) Decode(code string) (int64, error) {
	const op = "codec.Sqids.Decode"

	nums := c.sq.Decode(code)
	if len(nums) != 1 || nums[0] > math.MaxInt64 {
		return 0, fmt.Errorf("%s: %w: %w", op, entity.ErrInvalidInput, errNotCanonical)
	}

	canonical, err := c.sq.Encode(nums)
	if err != nil || canonical != code {
		return 0, fmt.Errorf("%s: %w: %w", op, entity.ErrInvalidInput, errNotCanonical)
	}

	return int64(nums[0]), nil
}
