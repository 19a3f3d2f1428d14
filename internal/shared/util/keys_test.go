package util

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestOwnerDir(t *testing.T) {
	a := OwnerDir("guest:abc")
	if a != OwnerDir("guest:abc") {
		t.Fatalf("expected stable directory name")
	}
	if a == OwnerDir("guest:abd") {
		t.Fatalf("expected distinct owners to map to distinct directories")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(a))
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"  My CV.docx ", "My_CV.docx"},
		{"C:\\Users\\me\\cv.pdf", "cv.pdf"},
		{"dir/sub/cv.txt", "cv.txt"},
		{"cv\x00?.pdf", "cv__.pdf"},
		{"cv..pdf", "cv..pdf"},
		{"Jane.Doe..Resume.pdf", "Jane.Doe..Resume.pdf"},
		{"résumé...final.docx", "résumé...final.docx"},
		{"../etc/passwd", "passwd"},
		{"..\\..\\cv.pdf", "cv.pdf"},
	}
	for _, tc := range tests {
		got, err := SanitizeFileName(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "..", "a/..", "/", "???"} {
		if _, err := SanitizeFileName(in); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("%q: expected ErrInvalidFileName, got %v", in, err)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("é", 300) + ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if utf8.RuneCountInString(got) != maxFileNameRunes || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("unexpected capped name %q", got)
	}
}
