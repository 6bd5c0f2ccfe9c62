package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// Alphabet is the set generated short ids are drawn from.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// GeneratedLength is the length of generated short ids.
	GeneratedLength = 12
	// MaxIDLength bounds client-chosen short ids.
	MaxIDLength = 64
)

// reservedIDs shadow fixed routes and can never be reached through /{id}.
var reservedIDs = map[ShortID]struct{}{
	"api":     {},
	"docs":    {},
	"health":  {},
	"metrics": {},
	"schemas": {},
}

// Generator produces random short ids.
type Generator func() ShortID

// NewGenerator returns a Generator of GeneratedLength ids over Alphabet.
func NewGenerator() (Generator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, GeneratedLength)
	if err != nil {
		return nil, fmt.Errorf("create id generator: %w", err)
	}

	return func() ShortID { return ShortID(gen()) }, nil
}

// ValidateID checks a client-chosen short id.
func ValidateID(id ShortID) error {
	if id == "" || len(id) > MaxIDLength {
		return fmt.Errorf("%w: id must be 1 to %d characters", ErrInvalidInput, MaxIDLength)
	}

	for i := 0; i < len(id); i++ {
		c := id[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return fmt.Errorf("%w: id must be alphanumeric", ErrInvalidInput)
		}
	}

	if _, ok := reservedIDs[id]; ok {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalidInput, id)
	}

	return nil
}
