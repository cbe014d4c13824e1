package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ErrParse — документ не удалось разобрать либо после извлечения текст пуст.
// Пользователь может восстановиться, вставив сырой текст вручную.
var ErrParse = errors.New("document parse error")

const (
	mimePDF   = "application/pdf"
	mimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePlain = "text/plain"
)

// ExtractText extracts plain text from an uploaded document tagged with a
// MIME type. Supported: pdf, docx, plain text. An empty result after
// extraction is reported as ErrParse.
func ExtractText(mime string, data []byte) (string, error) {
	var text string
	var err error
	switch mime {
	case mimePlain:
		text = string(data)
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDocx:
		text, err = extractDocx(data)
	default:
		return "", fmt.Errorf("%w: неподдерживаемый тип файла %q", ErrParse, mime)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	text = normalizeWhitespace(text)
	if text == "" {
		return "", fmt.Errorf("%w: документ не содержит текста", ErrParse)
	}
	return text, nil
}

// MimeForFilename derives the MIME type from the file extension.
// Returns "" for unsupported extensions.
func MimeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".txt":
		return mimePlain
	default:
		return ""
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	content := doc.Editable().GetContent()
	// document.xml: абзацы -> переводы строк, остальные теги убираем
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	reTags := regexp.MustCompile(`<[^>]+>`)
	return reTags.ReplaceAllString(content, " "), nil
}

func normalizeWhitespace(s string) string {
	// Collapse excessive whitespace and trim
	re := regexp.MustCompile(`[ \t\r\f\v]+`)
	s = re.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ", " ")
	// Preserve newlines but collapse runs
	reN := regexp.MustCompile(`\n+`)
	s = reN.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
