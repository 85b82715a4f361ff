package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type htmlData struct {
	Doc Document
	// QR is generated locally, so it is trusted as a URL.
	QR template.URL
}

// WriteHTML renders the A4 print page with a QR code pointing at doc.QRTarget.
func WriteHTML(w io.Writer, doc Document) error {
	qr, err := QRDataURL(doc.QRTarget)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	return templates.ExecuteTemplate(w, "print.html", htmlData{Doc: doc, QR: template.URL(qr)})
}
