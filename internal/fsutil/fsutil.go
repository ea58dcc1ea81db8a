package fsutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies how an input document is read.
type Format string

const (
	FormatText    Format = "text"
	FormatEPUB    Format = "epub"
	FormatHTML    Format = "html"
	FormatUnknown Format = "unknown"
)

const epubMediaType = "application/epub+zip"

// HashFile computes the SHA-256 hash of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashBytes computes the SHA-256 hash of the provided bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteFileAtomic writes data to a temporary file beside path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory; %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file; %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file; %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file; %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions; %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file; %w", err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DetectFormat decides how an input document should be read, from its
// extension first and its leading bytes second.
func DetectFormat(path string, head []byte) Format {
	switch DetectMIME(path, head) {
	case epubMediaType:
		return FormatEPUB
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	case "text/plain", "text/markdown":
		return FormatText
	}

	// EPUB archives start with a stored "mimetype" entry naming the media type.
	if bytes.HasPrefix(head, []byte("PK")) && bytes.Contains(head, []byte(epubMediaType)) {
		return FormatEPUB
	}
	return FormatUnknown
}

// DetectMIME determines the MIME type of content.
func DetectMIME(path string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	extMime := extensionToMIME(ext)
	if extMime == "" {
		extMime = strings.TrimSpace(mime.TypeByExtension(ext))
		if idx := strings.Index(extMime, ";"); idx != -1 {
			extMime = strings.TrimSpace(extMime[:idx])
		}
	}

	var sniffed string
	if len(content) > 0 {
		sniffed = http.DetectContentType(content)
		if idx := strings.Index(sniffed, ";"); idx != -1 {
			sniffed = strings.TrimSpace(sniffed[:idx])
		}
	}

	if extMime != "" {
		if sniffed == "" || sniffed == "application/octet-stream" || sniffed == "text/plain" || sniffed == "application/zip" {
			return extMime
		}
	}

	if sniffed != "" {
		return sniffed
	}

	if extMime != "" {
		return extMime
	}

	return "application/octet-stream"
}

// MIMEFromExtension returns a best-effort MIME type for a file extension.
// The extension may be provided with or without a leading dot.
func MIMEFromExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return extensionToMIME(ext)
}

func extensionToMIME(ext string) string {
	mimeMap := map[string]string{
		// Documents
		".txt":      "text/plain",
		".text":     "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".epub":     epubMediaType,
		".html":     "text/html",
		".htm":      "text/html",
		".xhtml":    "application/xhtml+xml",

		// Data formats
		".json": "application/json",
		".yaml": "text/yaml",
		".yml":  "text/yaml",

		// Media
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".mp3":  "audio/mpeg",
		".mp4":  "video/mp4",
	}

	return mimeMap[ext]
}
