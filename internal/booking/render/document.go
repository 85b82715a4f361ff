// Package render produces the printable booking sheet as HTML or PDF.
package render

import (
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
)

// StaffCategories lists the staff count rows in print order.
var StaffCategories = []string{"production", "permanent", "temporary", "migrant", "contractors", "homeworkers", "management"}

type Options struct {
	BrandName     string
	PublicBaseURL string
	GeneratedAt   time.Time
}

type Party struct {
	Label   string
	Company string
	Address string
	Contact string
	Title   string
	Phone   string
	Email   string
	GPS     string
}

type StaffRow struct {
	Category string
	Male     int
	Female   int
}

type Acknowledgement struct {
	RequesterName         string
	RequesterTitle        string
	RequesterDate         string
	RequesterSignatureURL string
	BrandName             string
	BrandDate             string
	BrandSignatureURL     string
}

// Document is the print view of a booking record.
type Document struct {
	RefID       string
	CreatedAt   string
	Locked      bool
	BrandName   string
	GeneratedAt string
	Year        int
	QRTarget    string

	ServiceType      string
	Fulfillment      string
	Services         string
	ClientsExpected  string
	Platform         string
	FactoryRequester string

	Parties     []Party
	Staff       []StaffRow
	TotalMale   int
	TotalFemale int
	Notes       string
	Ack         Acknowledgement

	TermsAccepted bool
	TermsVersion  string
	TermsURL      string
}

func NewDocument(rec domain.BookingRecord, opts Options) Document {
	form := domain.ParseForm(rec.Form)
	generated := opts.GeneratedAt.UTC()

	doc := Document{
		RefID:            rec.RefID,
		CreatedAt:        rec.TS,
		Locked:           rec.Locked,
		BrandName:        opts.BrandName,
		GeneratedAt:      generated.Format("2006-01-02 15:04 MST"),
		Year:             generated.Year(),
		QRTarget:         QRTarget(opts.PublicBaseURL, rec.RefID),
		ServiceType:      serviceType(form),
		Fulfillment:      fulfillment(form),
		Services:         strings.Join(form.Strings("meta", "services"), ", "),
		ClientsExpected:  form.String("meta", "clientsExpected"),
		Platform:         joinNonEmpty(" · ", form.String("meta", "platformRef"), form.String("meta", "platformSite")),
		FactoryRequester: form.String("meta", "factoryOrRequesterId"),
		Notes:            form.String("special", "details"),
		Ack: Acknowledgement{
			RequesterName:         form.String("ack", "requesterName"),
			RequesterTitle:        form.String("ack", "requesterTitle"),
			RequesterDate:         form.String("ack", "requesterDate"),
			RequesterSignatureURL: form.String("ack", "requesterSignatureUrl"),
			BrandName:             form.String("ack", "glaName"),
			BrandDate:             form.String("ack", "glaDate"),
			BrandSignatureURL:     form.String("ack", "glaSignatureUrl"),
		},
	}

	for _, p := range []struct{ key, label string }{
		{"requester", "Requester (Lead Account)"},
		{"supplier", "Supplier / Factory"},
		{"vendor", "Vendor / Trading"},
		{"buyer", "Buyer / Billing"},
	} {
		doc.Parties = append(doc.Parties, Party{
			Label:   p.label,
			Company: form.String(p.key, "company"),
			Address: form.String(p.key, "address"),
			Contact: form.String(p.key, "contact"),
			Title:   form.String(p.key, "title"),
			Phone:   form.String(p.key, "phone"),
			Email:   form.String(p.key, "email"),
			GPS:     form.String(p.key, "gps"),
		})
	}

	for _, c := range StaffCategories {
		row := StaffRow{
			Category: c,
			Male:     form.Int("staffCounts", c, "male"),
			Female:   form.Int("staffCounts", c, "female"),
		}
		doc.TotalMale += row.Male
		doc.TotalFemale += row.Female
		doc.Staff = append(doc.Staff, row)
	}

	if rec.Terms != nil {
		doc.TermsAccepted = rec.Terms.Accepted
		doc.TermsVersion = rec.Terms.Version
		doc.TermsURL = rec.Terms.URL
	}
	return doc
}

// QRTarget is the public link encoded in the QR code.
func QRTarget(baseURL, refID string) string {
	return strings.TrimRight(baseURL, "/") + "/?ref=" + url.QueryEscape(refID)
}

func serviceType(form domain.FormValues) string {
	t := form.String("meta", "auditType")
	if t == "Other" {
		return joinNonEmpty(" - ", t, form.String("meta", "auditTypeOther"))
	}
	return t
}

func fulfillment(form domain.FormValues) string {
	mode := form.String("meta", "fulfillment")
	if mode == "" {
		return ""
	}
	if mode == "Fixed" {
		return joinNonEmpty(" - ", mode, form.String("meta", "auditDate"))
	}
	window := joinNonEmpty(" to ", form.String("meta", "windowStart"), form.String("meta", "windowEnd"))
	return joinNonEmpty(" - ", mode, window)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
