package assembler

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Options controls page geometry. The defaults correspond to a Letter
// page at 96 DPI with two-inch side margins.
type Options struct {
	Columns            int
	ColumnWidth        int
	ColumnTargetHeight int
	MaxPerPage         int
}

// pageData is the template input for one rendered page.
type pageData struct {
	PageNum     int
	StartNumber int
	EndNumber   int
	IsRecto     bool
	ColumnWidth int
	Columns     [][]Item
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: letter; margin: 0.88in 2in 1in 2in; }
  body { margin: 0; font-family: serif; }
  .running-head { height: 0.75in; display: flex; align-items: center;
    justify-content: {{if .IsRecto}}flex-end{{else}}flex-start{{end}};
    font-variant-numeric: oldstyle-nums; }
  .grid { display: flex; gap: 10px; }
  .column { width: {{.ColumnWidth}}px; }
  .column img { max-width: 100%; display: block; margin-bottom: 4px; }
</style>
</head>
<body>
<div class="running-head">{{.StartNumber}}&ndash;{{.EndNumber}}</div>
<div class="grid">
{{- range .Columns}}
  <div class="column">
  {{- range .}}
    <img src="{{.ImagePath}}" alt="{{.Value}}">
  {{- end}}
  </div>
{{- end}}
</div>
</body>
</html>
`))

// BuildPages renders the items into sequential HTML pages under outDir
// and returns the written paths in page order.
func BuildPages(items []Item, outDir string, opts Options) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	maxPerPage := opts.MaxPerPage
	if maxPerPage <= 0 {
		maxPerPage = len(items)
	}

	var paths []string
	pageNum := 0
	for start := 0; start < len(items); {
		end := min(start+maxPerPage, len(items))
		cols, used := Distribute(items[start:end], opts.Columns, opts.ColumnWidth, opts.ColumnTargetHeight)
		if used == 0 {
			// A single item taller than the column still gets placed
			// alone rather than looping forever.
			cols[0] = append(cols[0], items[start])
			used = 1
		}
		pageNum++

		data := pageData{
			PageNum:     pageNum,
			StartNumber: items[start].Value,
			EndNumber:   items[start+used-1].Value,
			IsRecto:     pageNum%2 == 1,
			ColumnWidth: opts.ColumnWidth,
			Columns:     cols,
		}
		path := filepath.Join(outDir, fmt.Sprintf("page_%04d.html", pageNum-1))
		if err := renderPage(path, data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
		start += used
	}
	return paths, nil
}

func renderPage(path string, data pageData) error {
	f, err := os.Create(path) //nolint:gosec // G304: path under configured output dir
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}
	if err := pageTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("render page %s: %w", path, err)
	}
	return f.Close()
}
