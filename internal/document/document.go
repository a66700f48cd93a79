// Package document downloads candidate files (CVs, offer letters) and
// extracts their plain text.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

const (
	downloadTimeout = 20 * time.Second
	// Some CDNs refuse requests without a browser-looking agent.
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Extractor fetches documents over HTTP and turns them into text.
type Extractor struct {
	HTTPClient *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{
		HTTPClient: &http.Client{Timeout: downloadTimeout},
	}
}

// Download fetches the file at url and returns its raw bytes.
func (e *Extractor) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// TextFromURL downloads the file and extracts text based on the URL
// extension. Without a recognizable extension it tries PDF first, then DOCX.
func (e *Extractor) TextFromURL(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("document url is empty")
	}

	data, err := e.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("downloading document: %w", err)
	}

	return ExtractByName(data, url)
}

// ExtractByName picks the extraction format from the file name or URL.
// Legacy .doc files are not supported.
func ExtractByName(data []byte, name string) (string, error) {
	switch ext := extension(name); ext {
	case "pdf":
		return FromPDF(data)
	case "docx":
		return FromDOCX(data)
	case "doc":
		return "", fmt.Errorf("legacy .doc format is not supported")
	default:
		// No usable extension: try both formats.
		if text, err := FromPDF(data); err == nil {
			return text, nil
		}
		return FromDOCX(data)
	}
}

// FromPDF extracts text page by page, separating pages with a marker so
// long CVs keep their structure.
func FromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&b, "\n--- Page %d ---\n", i)
		b.WriteString(text)
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}

	return result, nil
}

// FromDOCX extracts paragraph and table text from a DOCX archive.
func FromDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, block.String())
		case *docx.Table:
			lines = append(lines, block.String())
		}
	}

	result := strings.TrimSpace(strings.Join(lines, "\n"))
	if result == "" {
		return "", fmt.Errorf("docx contains no extractable text")
	}

	return result, nil
}

func extension(name string) string {
	trimmed := strings.ToLower(strings.SplitN(name, "?", 2)[0])
	if idx := strings.LastIndex(trimmed, "."); idx != -1 {
		return trimmed[idx+1:]
	}
	return ""
}
