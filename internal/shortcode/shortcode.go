// Package shortcode generates the fixed-alphabet codes used in redirect paths.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the fixed character set short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the short code length used unless configured otherwise.
const DefaultLength = 6

// GenerateFunc produces a string of the given length from the given alphabet.
type GenerateFunc func(alphabet string, length int) (string, error)

// Generator produces short codes. It makes no uniqueness guarantee;
// collisions surface as unique violations at insertion time.
type Generator struct {
	length   int
	generate GenerateFunc
}

// Option configures a Generator.
type Option func(*Generator)

// WithGenerateFunc replaces the randomness source. Tests use it to make
// generation deterministic.
func WithGenerateFunc(fn GenerateFunc) Option {
	return func(g *Generator) {
		g.generate = fn
	}
}

// New creates a Generator producing codes of the given length.
func New(length int, opts ...Option) *Generator {
	if length <= 0 {
		length = DefaultLength
	}

	g := &Generator{
		length:   length,
		generate: gonanoid.Generate,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns a new short code.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := g.generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}
