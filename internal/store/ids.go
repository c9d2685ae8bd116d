package store

import (
	"math/big"

	"github.com/google/uuid"
)

const idLength = 7

// NewID returns "<prefix>_<base36>" with the random tail taken from a v4 UUID.
func NewID(prefix string) string {
	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	if len(s) > idLength {
		s = s[len(s)-idLength:]
	}
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "_" + s
}
