package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const refAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewReference mints a human-readable reference like "PR-20260901-4F7A2C".
// References are display identifiers; uniqueness is enforced by the store's
// unique index, the random suffix just makes collisions implausible.
func NewReference(prefix string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("20060102"), buf)
}
