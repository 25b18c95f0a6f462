package brief

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFromText(t *testing.T) {
	b := FromText("Spring Launch", "  We sell trail shoes.  \n")

	if b.Source != "text" {
		t.Errorf("source = %q", b.Source)
	}
	if b.Title != "Spring Launch" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Text != "We sell trail shoes." {
		t.Errorf("text = %q", b.Text)
	}
}

func TestPrompt(t *testing.T) {
	b := FromText("Spring Launch", "We sell trail shoes.")

	p := b.Prompt()
	if !strings.HasPrefix(p, "Generate target audiences for a marketing campaign based on the following brief (Spring Launch):") {
		t.Errorf("prompt = %q", p)
	}
	if !strings.HasSuffix(p, "We sell trail shoes.") {
		t.Errorf("prompt = %q", p)
	}
}

func TestPromptUntitled(t *testing.T) {
	p := FromText("", "body").Prompt()
	if strings.Contains(p, "(") {
		t.Errorf("untitled prompt should carry no title parens: %q", p)
	}
}

func TestPromptTruncates(t *testing.T) {
	b := FromText("t", strings.Repeat("x", maxPromptChars+500))

	p := b.Prompt()
	// Header plus at most maxPromptChars of body.
	if len(p) > maxPromptChars+200 {
		t.Errorf("prompt length = %d", len(p))
	}
}

func TestFromPDFRejectsGarbage(t *testing.T) {
	if _, err := FromPDF("t", []byte("not a pdf")); err == nil {
		t.Fatal("expected an error for non-PDF input")
	}
}

func TestFromURLHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>ignored</title><style>body{color:red}</style></head>
			<body><script>alert(1)</script><h1>Trail Shoes</h1><p>Built for mud.</p></body></html>`))
	}))
	defer srv.Close()

	b, err := FromURL(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != "url" || b.Title != srv.URL {
		t.Errorf("brief = %+v", b)
	}
	if strings.Contains(b.Text, "alert(1)") || strings.Contains(b.Text, "color:red") {
		t.Errorf("script/style leaked into text: %q", b.Text)
	}
	for _, want := range []string{"Trail Shoes", "Built for mud."} {
		if !strings.Contains(b.Text, want) {
			t.Errorf("text %q missing %q", b.Text, want)
		}
	}
}

func TestFromURLPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("raw body <not html>"))
	}))
	defer srv.Close()

	b, err := FromURL(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if b.Text != "raw body <not html>" {
		t.Errorf("text = %q", b.Text)
	}
}

func TestFromURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := FromURL(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestExtractTextBlocks(t *testing.T) {
	text := extractText([]byte("<div>first</div><div>second</div>"))

	if !strings.Contains(text, "first") || !strings.Contains(text, "second") {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("block elements should break lines: %q", text)
	}
}
