/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

import (
	"crypto/rand"
	"strings"
)

const (
	CodeLength = 6

	// Ambiguous characters (0/O, 1/I) are left out so codes can be read
	// aloud from the host display.
	codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NewCode generates a random room code via crypto/rand.
func NewCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, CodeLength)
	for i := range out {
		out[i] = codeChars[int(buf[i])%len(codeChars)]
	}
	return string(out)
}

// Normalize makes room codes case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the shape of a generated room code.
func ValidCode(code string) bool {
	code = Normalize(code)
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(codeChars, c) {
			return false
		}
	}
	return true
}
