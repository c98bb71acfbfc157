package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadsRoute is the URL prefix uploaded files are served under.
const UploadsRoute = "/api/uploads"

// SaveUploadedFile copies an uploaded file into destDir under a unique name
// and returns the stored path (destDir joined with the new name).
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	newFilename := uuid.NewString() + ext
	filePath := filepath.Join(destDir, newFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filePath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return filePath, nil
}

// DeleteUploadedFile removes a previously stored upload. Only the base name of
// stored is used, so nothing outside destDir can be touched. URLs count as
// uploads only when served from one of baseURLs. A missing file is not an
// error.
func DeleteUploadedFile(destDir, stored string, baseURLs ...string) error {
	if !IsLocalUpload(stored, baseURLs...) {
		return nil
	}
	name := UploadName(stored)
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(destDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsLocalUpload reports whether stored points at the upload store rather than
// an external link. A URL is local only when it sits under the uploads route
// of one of baseURLs.
func IsLocalUpload(stored string, baseURLs ...string) bool {
	if stored == "" {
		return false
	}
	if !isURL(stored) {
		return true
	}
	for _, base := range baseURLs {
		base = strings.TrimRight(base, "/")
		if base != "" && strings.HasPrefix(stored, base+UploadsRoute+"/") {
			return true
		}
	}
	return false
}

// UploadName is the file name a stored path or upload URL refers to.
func UploadName(stored string) string {
	name := filepath.Base(filepath.FromSlash(stored))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// GetFileURL builds the public URL of a stored upload. baseURL is the scheme
// and host, e.g. "http://localhost:3000".
func GetFileURL(baseURL, stored string) string {
	if stored == "" {
		return ""
	}
	if isURL(stored) {
		return stored
	}
	return strings.TrimRight(baseURL, "/") + UploadsRoute + "/" + filepath.Base(filepath.FromSlash(stored))
}
