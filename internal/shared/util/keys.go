// Package util holds helpers for building staging keys.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFileNameRunes = 128

var ErrInvalidFileName = errors.New("invalid file name")

// OwnerDir maps a caller partition key ("guest:...", "ip:...") to a fixed-width,
// path-safe directory name.
func OwnerDir(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:16])
}

// SanitizeFileName keeps the base name of an uploaded file, replaces separators and
// control characters, and caps the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	s := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if s == "." || s == ".." || s == "/" {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r), r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		case unicode.IsSpace(r):
			return '_'
		}
		return r
	}, s)
	if strings.Trim(s, "_") == "" {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(s) > maxFileNameRunes {
		ext := path.Ext(s)
		if utf8.RuneCountInString(ext) > 16 {
			ext = ""
		}
		runes := []rune(strings.TrimSuffix(s, ext))
		s = string(runes[:maxFileNameRunes-utf8.RuneCountInString(ext)]) + ext
	}
	return s, nil
}
