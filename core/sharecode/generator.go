package sharecode

import (
	"crypto/rand"
	"math/big"
)

const (
	codeLen      = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	alphabetLen = big.NewInt(int64(len(codeAlphabet)))

	generateCodeFunc = generateCode // mockable
)

// generateCode returns a 6-char code uniformly sampled over [A-Z0-9].
// The 36^6 space makes collisions among concurrently valid codes unlikely;
// Service.Issue still re-draws on a hit against its in-process tier.
func generateCode() (string, error) {
	buf := make([]byte, codeLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
