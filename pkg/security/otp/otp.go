// Package otp produces the short numeric verification codes mailed to users.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const digits = "0123456789"

// Generator emits fixed-length numeric codes from crypto/rand.
type Generator struct {
	length int
}

func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = 4
	}
	return &Generator{length: length}
}

// NewCode returns a code of the configured length. Each digit is drawn
// independently from a CSPRNG, so prior outputs reveal nothing about the next.
func (g *Generator) NewCode() (string, error) {
	buf := make([]byte, g.length)
	max := big.NewInt(int64(len(digits)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		buf[i] = digits[n.Int64()]
	}
	return string(buf), nil
}
