// Package idgen generates route identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RoutePrefix marks identifiers of recorded routes.
const RoutePrefix = "rt-"

// Alphabet is the character set of the random part.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters. 16 characters over a
// 62-symbol alphabet give about 95 bits of entropy.
const Length = 16

// Func produces a new unique identifier.
type Func func() (string, error)

// NewRouteID returns a fresh route identifier such as "rt-V1StGXR8Z5jdHi6B".
func NewRouteID() (string, error) {
	return WithPrefix(RoutePrefix)
}

// WithPrefix returns a fresh identifier with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
