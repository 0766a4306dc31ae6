package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"tb-intake/internal/domain/entity"
)

// Document is a standalone printable HTML page.
type Document struct {
	Name string
	HTML []byte
}

// PrintSurface receives rendered documents for printing.
type PrintSurface interface {
	Print(ctx context.Context, doc Document) error
}

const printTemplate = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Medical Report</title>
    <style>
      body { font-family: Arial, sans-serif; padding: 30px; line-height: 1.6; }
      h2 { margin-bottom: 5px; }
      .header { text-align: center; border-bottom: 2px solid #333; padding-bottom: 10px; }
      .section { margin-top: 20px; }
      .label { font-weight: bold; }
      .report-box { margin-top: 20px; padding: 15px; border: 1px solid #aaa; border-radius: 10px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h2>Medical TB Screening Report</h2>
      <p>{{.FullName}} &mdash; {{.PatientCode}}</p>
    </div>

    <div class="section">
      <p><span class="label">Age:</span> {{.Age}}</p>
      <p><span class="label">Gender:</span> {{.Gender}}</p>
      <p><span class="label">Phone:</span> {{.Phone}}</p>
    </div>

    <div class="section report-box">
      {{.Body}}
    </div>

    <script>
      window.onload = function () { window.print(); };
    </script>
  </body>
</html>
`

type printData struct {
	FullName    string
	PatientCode string
	Age         int
	Gender      entity.Gender
	Phone       string
	Body        template.HTML
}

// Renderer builds printable documents from formatted report text.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("print").Parse(printTemplate)),
		now:  time.Now,
	}
}

// Render builds the document. Patient fields and report text are escaped; only the
// LineBreak marker survives as markup.
func (r *Renderer) Render(patient *entity.Patient, formatted string) (Document, error) {
	data := printData{Body: safeBody(formatted)}
	code := "unknown"
	if patient != nil {
		data.FullName = patient.FullName
		data.PatientCode = patient.PatientCode
		data.Age = patient.Age
		data.Gender = patient.Gender
		data.Phone = patient.Phone
		if patient.PatientCode != "" {
			code = patient.PatientCode
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("render print document: %w", err)
	}

	return Document{
		Name: fmt.Sprintf("tb-report-%s-%s", sanitizeName(code), r.now().UTC().Format("20060102T150405")),
		HTML: buf.Bytes(),
	}, nil
}

// Print renders the document and hands it to surface once.
func (r *Renderer) Print(ctx context.Context, surface PrintSurface, patient *entity.Patient, formatted string) (Document, error) {
	doc, err := r.Render(patient, formatted)
	if err != nil {
		return Document{}, err
	}
	if err := surface.Print(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("print document %s: %w", doc.Name, err)
	}
	return doc, nil
}

func safeBody(formatted string) template.HTML {
	escaped := template.HTMLEscapeString(formatted)
	return template.HTML(strings.ReplaceAll(escaped, template.HTMLEscapeString(LineBreak), LineBreak))
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
