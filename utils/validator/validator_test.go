package validator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		valid    bool
		mimeType string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}, true, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, true, "image/png"},
		{"gif", []byte("GIF89a"), true, "image/gif"},
		{"bmp is rejected", []byte{0x42, 0x4D, 0, 0, 0, 0, 0, 0, 0, 0}, false, "image/bmp"},
		{"html is rejected", []byte("<html><body>x</body></html>"), false, "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bytes.NewReader(tt.data)
			valid, mimeType, err := IsImage(reader)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.mimeType, mimeType)

			pos, _ := reader.Seek(0, 1)
			assert.Equal(t, int64(0), pos)
		})
	}
}

func TestIsImage_Empty(t *testing.T) {
	valid, _, err := IsImage(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("teacher@school.lk"))
	assert.True(t, IsEmail("  head.office@school.edu  "))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail(""))
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Ab1!", ErrPasswordTooShort},
		{"alllowercase1!", ErrPasswordWeak},
		{"ALLUPPERCASE1!", ErrPasswordWeak},
		{"NoDigitsHere!", ErrPasswordWeak},
		{"NoSpecial123", ErrPasswordWeak},
		{"Str0ng!Pass", nil},
		{"Päss-w0rd", nil},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPasswordStrength(tt.password))
		})
	}
}
