package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// JoinCodeLength is the length of the short code partners type to connect.
const JoinCodeLength = 6

// NewJoinCode returns a short uppercase alphanumeric token. Uniqueness is not
// guaranteed here; the creating transaction carries an existence condition so
// a collision fails the write instead of overwriting.
func NewJoinCode() string {
	b := make([]byte, JoinCodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// NewCoupleID builds a couple document id from a token and the current time,
// e.g. "couple_AB12CD_1735689600000".
func NewCoupleID(token string) string {
	if token == "" {
		token = NewJoinCode()
	}
	return fmt.Sprintf("couple_%s_%d", token, time.Now().UnixMilli())
}
