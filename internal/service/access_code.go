package service

import (
	"crypto/rand"
	"strings"
)

// Unambiguous alphabet: no O/0, I/1 lookalikes. Codes are typed by hand
// from printed convocations.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const accessCodeLength = 8

// GenerateAccessCode returns a random human-typable access code.
func GenerateAccessCode() string {
	buf := make([]byte, accessCodeLength)
	rand.Read(buf)
	for i := range buf {
		buf[i] = accessCodeAlphabet[int(buf[i])%len(accessCodeAlphabet)]
	}
	return string(buf)
}

// NormalizeAccessCode canonicalizes a hand-typed code. Codes are stored
// uppercase; a candidate typing one in lowercase must still match.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
