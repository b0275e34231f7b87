package booking

import (
	"crypto/rand"
	"fmt"
)

const (
	pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrLength   = 6
)

// newPNR draws 6 characters uniformly from [A-Z0-9]. Uniqueness is
// enforced by the database; callers retry on collision.
func newPNR() (string, error) {
	code := make([]byte, 0, pnrLength)
	buf := make([]byte, 16)
	for len(code) < pnrLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate pnr: %w", err)
		}
		for _, b := range buf {
			// bytes >= 252 would skew the distribution (252 = 36 * 7)
			if b >= 252 {
				continue
			}
			code = append(code, pnrAlphabet[int(b)%len(pnrAlphabet)])
			if len(code) == pnrLength {
				break
			}
		}
	}
	return string(code), nil
}
