package export

import (
	"bytes"
	"strings"
	"text/template"
	"time"
)

// FileNameData is the data available to file name templates.
type FileNameData struct {
	Source    string
	Format    string
	Title     string
	Timestamp string
	Date      string
}

// NewFileNameData fills the template data for one export.
func NewFileNameData(source string, format Format, title string, now time.Time) FileNameData {
	return FileNameData{
		Source:    source,
		Format:    string(format),
		Title:     title,
		Timestamp: now.UTC().Format("20060102T150405Z"),
		Date:      now.UTC().Format("20060102"),
	}
}

// RenderFileName expands a text/template file name pattern such as
// "{{.Source}}_{{.Date}}" and appends the format extension.
func RenderFileName(pattern string, format Format, data FileNameData) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultFileName
	}
	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", NewError(KindValidation, "invalid file name template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewError(KindValidation, "render file name", err)
	}
	name := SanitizeFileName(buf.String(), format)
	return EnsureExtension(name, format), nil
}

// SanitizeFileName strips characters that break a Content-Disposition header
// or a file path.
func SanitizeFileName(name string, format Format) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = strings.TrimSuffix(DefaultFileName, ".xlsx")
		if format != "" {
			name += "." + string(format)
		}
	}
	return name
}

// EnsureExtension swaps or appends the extension expected for format.
func EnsureExtension(name string, format Format) string {
	if format == "" {
		return name
	}
	if current := FormatFromPath(name); current != "" {
		if current == format {
			return name
		}
		name = name[:len(name)-len(current)-1]
	}
	return name + "." + string(format)
}
