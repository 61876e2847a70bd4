// Package idgen generates the short random identifiers used for board
// sessions and journal entries.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each kind of generated identifier.
const (
	SessionPrefix    = "sess-"
	TransitionPrefix = "tr-"
)

// alphabet is lowercase alphanumerics so IDs survive case-insensitive
// terminals and NATS subject tokens.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const length = 12

// Session returns a new board session ID.
func Session() (string, error) {
	return WithPrefix(SessionPrefix)
}

// Transition returns a new journal entry ID.
func Transition() (string, error) {
	return WithPrefix(TransitionPrefix)
}

// WithPrefix returns prefix followed by random characters.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// MustSession is Session for call sites that cannot recover from an
// exhausted entropy source.
func MustSession() string {
	id, err := Session()
	if err != nil {
		panic(err)
	}
	return id
}
