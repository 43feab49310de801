package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/WSG23/overlayreview/internal/review"
)

// HTMLFormatter renders the markdown report to a standalone HTML page.
type HTMLFormatter struct{}

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Overlay Review</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }
code { background: #f4f4f4; padding: 0 3px; }
</style>
</head>
<body>
`

func (f *HTMLFormatter) Format(w io.Writer, report *review.Report) error {
	var src bytes.Buffer
	if err := (&MarkdownFormatter{}).Format(&src, report); err != nil {
		return err
	}

	// the markdown carries <details> blocks, so raw HTML must pass through
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	if _, err := fmt.Fprintf(w, htmlHead); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
