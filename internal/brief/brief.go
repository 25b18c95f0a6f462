// Package brief turns campaign source material (plain text, PDFs, web
// pages) into a text body suitable for seeding an audience generation
// prompt.
package brief

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	maxBriefSize    = 10 << 20 // 10MB
	maxURLFetchSize = 5 << 20  // 5MB
	maxPromptChars  = 4000

	fetchTimeout = 10 * time.Second
)

// Brief holds extracted campaign source material.
type Brief struct {
	Title  string `json:"title"`
	Source string `json:"source"` // "text", "pdf" or "url"
	Text   string `json:"text"`
}

// FromText wraps raw text as a brief.
func FromText(title, text string) Brief {
	return Brief{Title: title, Source: "text", Text: strings.TrimSpace(text)}
}

// FromPDF extracts the plain text of a PDF document.
func FromPDF(title string, data []byte) (Brief, error) {
	if len(data) > maxBriefSize {
		return Brief{}, fmt.Errorf("pdf exceeds %d bytes", maxBriefSize)
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Brief{}, fmt.Errorf("parsing pdf: %w", err)
	}
	text, err := reader.GetPlainText()
	if err != nil {
		return Brief{}, fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return Brief{}, fmt.Errorf("reading pdf text: %w", err)
	}
	return Brief{Title: title, Source: "pdf", Text: strings.TrimSpace(buf.String())}, nil
}

// FromURL fetches a web page and extracts its visible text. HTML pages are
// stripped to text; other content types are used as-is.
func FromURL(ctx context.Context, client *http.Client, url string) (Brief, error) {
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Brief{}, fmt.Errorf("invalid url: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Brief{}, fmt.Errorf("fetching url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Brief{}, fmt.Errorf("url returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxURLFetchSize))
	if err != nil {
		return Brief{}, fmt.Errorf("reading url response: %w", err)
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		text = extractText(body)
	}
	return Brief{Title: url, Source: "url", Text: strings.TrimSpace(text)}, nil
}

// Prompt renders the brief as a generation prompt, truncated to a size the
// backend accepts.
func (b Brief) Prompt() string {
	text := b.Text
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}
	var sb strings.Builder
	sb.WriteString("Generate target audiences for a marketing campaign based on the following brief")
	if b.Title != "" {
		fmt.Fprintf(&sb, " (%s)", b.Title)
	}
	sb.WriteString(":\n\n")
	sb.WriteString(text)
	return sb.String()
}
