package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoinCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := NewJoinCode()
		assert.Len(t, code, JoinCodeLength)
		assert.Equal(t, strings.ToUpper(code), code)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
	}
}

func TestNewCoupleID(t *testing.T) {
	pattern := regexp.MustCompile(`^couple_[A-Z0-9]{6}_\d{13}$`)

	id := NewCoupleID("AB12CD")
	require.Regexp(t, pattern, id)
	assert.True(t, strings.HasPrefix(id, "couple_AB12CD_"))

	// Empty token gets a generated code.
	assert.Regexp(t, pattern, NewCoupleID(""))
}
