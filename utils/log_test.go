package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogMessage(t *testing.T) {
	assert.Equal(t, "adminfake entry", SanitizeLogMessage("admin\nfake entry"))
	assert.Equal(t, "a\tb", SanitizeLogMessage("a\tb"))
	assert.Equal(t, "Ñuñoa", SanitizeLogMessage("Ñuñoa"))
}

func TestSanitizeLogUsername_Truncates(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := SanitizeLogUsername(long)
	assert.Equal(t, 53, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
