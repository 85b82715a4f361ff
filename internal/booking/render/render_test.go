package render

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForm = `{
	"meta": {"auditType": "Other", "auditTypeOther": "Chemical", "fulfillment": "Window",
		"windowStart": "2025-04-01", "windowEnd": "2025-04-05", "services": ["SMETA", "BSCI"]},
	"requester": {"company": "Acme <Textiles>", "email": "a@x.com", "phone": "+62 811", "gps": "-6.2,106.8"},
	"supplier": {"company": "Mill Co"},
	"staffCounts": {"production": {"male": 10, "female": "12"}, "management": {"male": 2, "female": 1}},
	"special": {"details": "Bring PPE"},
	"ack": {"requesterName": "Dewi", "requesterSignatureUrl": "javascript:alert(1)"}
}`

func sampleDocument() Document {
	rec := domain.BookingRecord{
		RefID:  "GLB-25-000001-AB12",
		TS:     "2025-03-01T09:00:00.000Z",
		Form:   []byte(sampleForm),
		Locked: true,
		Terms:  &domain.Terms{Accepted: true, Version: "2025-01"},
	}
	return NewDocument(rec, Options{
		BrandName:     "Greenleaf Assurance",
		PublicBaseURL: "https://booking.example.test/",
		GeneratedAt:   time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
	})
}

func TestNewDocument(t *testing.T) {
	doc := sampleDocument()

	assert.Equal(t, "https://booking.example.test/?ref=GLB-25-000001-AB12", doc.QRTarget)
	assert.Equal(t, "Other - Chemical", doc.ServiceType)
	assert.Equal(t, "Window - 2025-04-01 to 2025-04-05", doc.Fulfillment)
	assert.Equal(t, "SMETA, BSCI", doc.Services)
	assert.Equal(t, 12, doc.TotalMale)
	assert.Equal(t, 13, doc.TotalFemale)
	require.Len(t, doc.Staff, len(StaffCategories))
	require.Len(t, doc.Parties, 4)
	assert.Equal(t, "Acme <Textiles>", doc.Parties[0].Company)
	assert.Equal(t, "Mill Co", doc.Parties[1].Company)
	assert.Equal(t, 2025, doc.Year)
	assert.True(t, doc.TermsAccepted)
}

func TestNewDocumentWithoutForm(t *testing.T) {
	doc := NewDocument(domain.BookingRecord{RefID: "R1"}, Options{PublicBaseURL: "https://x.test"})
	assert.Empty(t, doc.ServiceType)
	assert.Empty(t, doc.Fulfillment)
	assert.Zero(t, doc.TotalMale)
	assert.False(t, doc.TermsAccepted)
}

func TestQRPNG(t *testing.T) {
	data, err := QRPNG("https://booking.example.test/?ref=R1", 120)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleDocument()))
	html := buf.String()

	assert.Contains(t, html, "<title>Booking GLB-25-000001-AB12</title>")
	assert.Contains(t, html, "Acme &lt;Textiles&gt;")
	assert.NotContains(t, html, "Acme <Textiles>")
	assert.Contains(t, html, "Bring PPE")
	assert.Contains(t, html, "<b>Locked:</b> YES")
	assert.NotContains(t, html, "javascript:alert")

	idx := strings.Index(html, `src="data:image/png;base64,`)
	require.NotEqual(t, -1, idx)
	rest := html[idx+len(`src="data:image/png;base64,`):]
	encoded := rest[:strings.Index(rest, `"`)]
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
