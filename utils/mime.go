package utils

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// mimeToExtMap accepted photo types and their stored extension
var mimeToExtMap = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// GetSafeExtension returns the stored extension for an accepted photo
// type, or "" when the type is not accepted
func GetSafeExtension(mimeType string) string {
	mimeType = strings.Split(mimeType, ";")[0]
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))

	if ext, ok := mimeToExtMap[mimeType]; ok {
		return ext
	}
	return ""
}

// ContentTypeFromKey maps a storage key back to its media type
func ContentTypeFromKey(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	for mimeType, e := range mimeToExtMap {
		if e == ext {
			return mimeType
		}
	}
	return "application/octet-stream"
}

func SniffContentType(stream io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)

	n, err := stream.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read stream for mime sniffing: %w", err)
	}

	contentType := http.DetectContentType(buffer[:n])

	_, err = stream.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to seek stream back to start after sniffing: %w", err)
	}

	return contentType, nil
}
