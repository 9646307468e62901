// Package extract reads plain text out of PDF and DOCX resumes.
package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/logger"
)

const docxBody = "word/document.xml"

var (
	// ErrUnsupportedFormat is returned for anything but .pdf and .docx.
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf and docx are allowed")

	blankRuns = regexp.MustCompile(`\n(?:[ \t\r\f\v\x{00A0}]*\n){2,}`)
)

// Text returns the normalized text of the document at path.
// Failures are logged and reported as an empty string.
func Text(path string, log *zap.Logger) string {
	log = logger.WithFields(log, logger.DocumentFields(path, "")...)

	text, err := Read(path)
	if err != nil {
		log.Warn("could not extract text from document", zap.Error(err))
		return ""
	}

	return text
}

// Read extracts and normalizes the text of the document at path.
func Read(path string) (string, error) {
	var (
		raw string
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		raw, err = readPDF(path)
	case ".docx":
		raw, err = readDOCX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return "", err
	}

	return Normalize(raw), nil
}

// Normalize collapses runs of blank lines into a single blank line and trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func readPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}

func readDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != docxBody {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()

		return docxParagraphs(rc)
	}

	return "", fmt.Errorf("%s not found in docx", docxBody)
}

// docxParagraphs returns the text of every w:p element, one paragraph per line.
func docxParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		inPara     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
