package program

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Render returns the source text of p.
func Render(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := programTemplate.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("executing program template: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile renders p and writes it to path, creating parent directories.
func WriteFile(p *Program, path string) error {
	src, err := Render(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, src, filePerm); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	return nil
}

var programTemplate = template.Must(template.New("program").Parse(`# Generated by transformer. DO NOT EDIT.
{{range .Imports}}
{{.}}
{{- end}}
{{- if .Globals}}
{{range .Globals}}
{{.}}
{{- end}}
{{- end}}
{{range .Users}}

class {{.Name}}(HttpUser):
{{- if .Host}}
    host = {{printf "%q" .Host}}
{{- end}}
    weight = {{.Weight}}
{{- range .Tasks}}

    @task
    def {{.Name}}(self):
{{- range .Body}}
        {{.}}
{{- end}}
{{- end}}
{{- end}}
`))
