// Package base62 converts non-negative integers to and from positional
// base-62 strings over the alphabet 0-9A-Za-z.
//
// The mapping is a bijection between [0, math.MaxInt64] and the set of
// canonical codes: non-empty strings over the alphabet without a leading '0'
// (except the single-symbol code "0" itself).
package base62

import (
	"errors"
	"fmt"
	"math"
)

// Alphabet lists the digits in ascending value order.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	base = int64(len(Alphabet))
	// MaxLen is the length of Encode(math.MaxInt64).
	MaxLen = 11
)

var (
	// ErrInvalidInput is matched by every error returned from this package.
	ErrInvalidInput = errors.New("base62: invalid input")

	ErrNegative         = fmt.Errorf("%w: negative value", ErrInvalidInput)
	ErrEmpty            = fmt.Errorf("%w: empty code", ErrInvalidInput)
	ErrInvalidCharacter = fmt.Errorf("%w: character outside alphabet", ErrInvalidInput)
	ErrNonCanonical     = fmt.Errorf("%w: leading zero digit", ErrInvalidInput)
	ErrOverflow         = fmt.Errorf("%w: value overflows int64", ErrInvalidInput)
)

var digits = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// Encode returns the canonical code for n.
func Encode(n int64) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegative, n)
	}
	if n == 0 {
		return Alphabet[:1], nil
	}

	var buf [MaxLen]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}

	return string(buf[i:]), nil
}

// MustEncode is like Encode but panics on negative input.
func MustEncode(n int64) string {
	s, err := Encode(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode returns the value of a canonical code.
func Decode(code string) (int64, error) {
	if code == "" {
		return 0, ErrEmpty
	}
	if len(code) > 1 && code[0] == Alphabet[0] {
		return 0, fmt.Errorf("%w: %q", ErrNonCanonical, code)
	}

	var n int64
	for i := 0; i < len(code); i++ {
		d := digits[code[i]]
		if d < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, rune(code[i]), i)
		}
		if n > (math.MaxInt64-int64(d))/base {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, code)
		}
		n = n*base + int64(d)
	}

	return n, nil
}

// Valid reports whether code is a canonical code.
func Valid(code string) bool {
	_, err := Decode(code)
	return err == nil
}
