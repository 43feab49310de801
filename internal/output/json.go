package output

import (
	"encoding/json"
	"io"

	"github.com/WSG23/overlayreview/internal/review"
)

// JSONFormatter outputs the report as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, report *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
