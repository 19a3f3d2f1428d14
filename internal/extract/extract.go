package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"careerlift-backend/internal/shared/apperr"
	"careerlift-backend/internal/shared/storage/object"
	"careerlift-backend/internal/shared/telemetry"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
	mimeText = "text/plain"

	// DefaultMaxChars bounds the text handed to the generative backend.
	DefaultMaxChars = 100_000
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func init() {
	api.DisableConfigDir()
}

// Upload identifies a staged document.
type Upload struct {
	Key      string
	FileName string
	MIMEType string
}

// ExtractedDocument is the plain text pulled from an upload.
type ExtractedDocument struct {
	Text           string `json:"text"`
	CharacterCount int    `json:"characterCount"`
	PageCount      int    `json:"pageCount,omitempty"`
	Truncated      bool   `json:"truncated"`
	FileName       string `json:"fileName"`
}

// Extractor reads staged uploads and always releases them afterwards.
type Extractor struct {
	Store    object.ObjectStore
	MaxChars int
}

// New returns an extractor over store. maxChars <= 0 uses DefaultMaxChars.
func New(store object.ObjectStore, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{Store: store, MaxChars: maxChars}
}

// Extract pulls text from the staged upload. The staged object is released on every path.
func (e *Extractor) Extract(ctx context.Context, up Upload) (doc ExtractedDocument, err error) {
	defer func() {
		if relErr := e.Store.Release(context.WithoutCancel(ctx), up.Key); relErr != nil {
			telemetry.Warn("extract.release_failed", map[string]any{
				"key":   up.Key,
				"error": relErr.Error(),
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		return ExtractedDocument{}, apperr.New(apperr.KindExtractionFailed, "extract", err).WithInput(up.FileName)
	}

	body, err := e.Store.Open(ctx, up.Key)
	if err != nil {
		return ExtractedDocument{}, apperr.New(apperr.KindExtractionFailed, "extract", err).WithInput(up.FileName)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return ExtractedDocument{}, apperr.New(apperr.KindExtractionFailed, "extract", fmt.Errorf("read: %w", err)).WithInput(up.FileName)
	}
	if err := ctx.Err(); err != nil {
		return ExtractedDocument{}, apperr.New(apperr.KindExtractionFailed, "extract", err).WithInput(up.FileName)
	}

	text, pages, err := extractBytes(raw, up.MIMEType, up.FileName)
	if err != nil {
		return ExtractedDocument{}, apperr.New(apperr.KindExtractionFailed, "extract", err).WithInput(up.FileName)
	}

	doc = ExtractedDocument{Text: text, PageCount: pages, FileName: up.FileName}
	doc.Text, doc.Truncated = truncateRunes(doc.Text, e.MaxChars)
	doc.CharacterCount = utf8.RuneCountInString(doc.Text)
	if doc.Truncated {
		telemetry.Info("extract.truncated", map[string]any{
			"file":      up.FileName,
			"max_chars": e.MaxChars,
		})
	}
	return doc, nil
}

func extractBytes(data []byte, mimeType, fileName string) (string, int, error) {
	switch kind := detectType(mimeType, fileName, data); kind {
	case mimeText:
		if !utf8.Valid(data) {
			return "", 0, errors.New("text file is not valid UTF-8")
		}
		return string(data), 0, nil
	case mimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", 0, err
		}
		return text, pdfPageCount(data), nil
	case mimeDOCX:
		text, err := extractDOCX(data)
		return text, 0, err
	case mimeDOC:
		return "", 0, errors.New("legacy .doc files are not supported; save as .docx or PDF")
	default:
		return "", 0, fmt.Errorf("unsupported mime type: %s", kind)
	}
}

// detectType resolves the document type from the MIME hint, then the extension, then the bytes.
func detectType(mimeType, fileName string, data []byte) string {
	if t := normalizeMimeType(mimeType, fileName, data); t != "" {
		return t
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".doc":
		return mimeDOC
	case ".txt", ".text", ".md":
		return mimeText
	}
	return sniff(data)
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case "", "application/octet-stream":
		return ""
	case "pdf":
		return mimePDF
	case "docx", "doc/docx":
		return mimeDOCX
	case "doc":
		if bytes.HasPrefix(data, oleMagic) {
			return mimeDOC
		}
		return mimeDOCX
	case "txt", "text":
		return mimeText
	case "application/zip":
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		if strings.EqualFold(filepath.Ext(fileName), ".docx") {
			return mimeDOCX
		}
		return clean
	}
	if strings.HasPrefix(clean, "text/") {
		return mimeText
	}
	return clean
}

func sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return mimePDF
	case bytes.HasPrefix(data, oleMagic):
		return mimeDOC
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	detected := strings.Split(http.DetectContentType(data), ";")[0]
	if strings.HasPrefix(detected, "text/") && utf8.Valid(data) {
		return mimeText
	}
	return detected
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if buf.Len() > 0 && content != "" {
			buf.WriteString("\n")
		}
		buf.WriteString(content)
	}
	return strings.TrimSpace(buf.String()), nil
}

// pdfPageCount is best effort; zero means unknown.
func pdfPageCount(data []byte) int {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0
	}
	return n
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		switch name {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}

func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
