package export

import "fmt"

// Format names a supported download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Dataset defines tabular export content. Footer, when set, is rendered after the rows.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
}

// Renderer turns a dataset into a file body.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer for f.
func ForFormat(f Format) (Renderer, error) {
	switch f {
	case FormatCSV, "":
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", kind, i, len(row), len(d.Headers))
		}
	}
	return nil
}

func (d Dataset) body() [][]string {
	if len(d.Footer) == 0 {
		return d.Rows
	}
	rows := make([][]string, 0, len(d.Rows)+1)
	rows = append(rows, d.Rows...)
	footer := make([]string, len(d.Headers))
	copy(footer, d.Footer)
	return append(rows, footer)
}
