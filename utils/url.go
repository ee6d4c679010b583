package utils

import "strings"

// BuildPhotoURL public URL for a stored photo key
func BuildPhotoURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/photos/" + strings.TrimLeft(key, "/")
}
