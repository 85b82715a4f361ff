package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	sectionStyle = props.Text{Size: 11, Style: fontstyle.Bold, Top: 3}
	labelStyle   = props.Text{Size: 9, Style: fontstyle.Bold}
	valueStyle   = props.Text{Size: 9}
)

// PDF renders the booking sheet as an A4 PDF.
func PDF(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(32,
		col.New(9).Add(
			text.New(doc.BrandName+" · Service Booking", props.Text{Size: 16, Style: fontstyle.Bold}),
			text.New("Generated "+doc.GeneratedAt, props.Text{Top: 9, Size: 8}),
			text.New("Reference: "+doc.RefID, props.Text{Top: 15, Size: 9, Style: fontstyle.Bold}),
			text.New(fmt.Sprintf("Created: %s · Locked: %s", doc.CreatedAt, yesNo(doc.Locked)), props.Text{Top: 20, Size: 9}),
		),
		code.NewQrCol(3, doc.QRTarget, props.Rect{Center: true, Percent: 90}),
	)

	m.AddRow(9, text.NewCol(12, "1. Audit Information & Platform Data", sectionStyle))
	for _, kv := range [][2]string{
		{"Service Type", doc.ServiceType},
		{"Fulfillment", doc.Fulfillment},
		{"Requested Services", doc.Services},
		{"Clients expected", doc.ClientsExpected},
		{"Platform Ref / Site", doc.Platform},
		{"Factory / Requester ID", doc.FactoryRequester},
	} {
		m.AddRow(6, text.NewCol(4, kv[0], labelStyle), text.NewCol(8, kv[1], valueStyle))
	}

	m.AddRow(9, text.NewCol(12, "2. Parties & Contacts", sectionStyle))
	for i := 0; i < len(doc.Parties); i += 2 {
		cols := []core.Col{partyCol(doc.Parties[i])}
		if i+1 < len(doc.Parties) {
			cols = append(cols, partyCol(doc.Parties[i+1]))
		} else {
			cols = append(cols, col.New(6))
		}
		m.AddRow(26, cols...)
	}

	m.AddRow(9, text.NewCol(12, "3. Manday & Special Conditions", sectionStyle))
	m.AddRow(6,
		text.NewCol(6, "Category", labelStyle),
		text.NewCol(3, "Male", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, "Female", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, row := range doc.Staff {
		m.AddRow(5,
			text.NewCol(6, row.Category, valueStyle),
			text.NewCol(3, fmt.Sprintf("%d", row.Male), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, fmt.Sprintf("%d", row.Female), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(6,
		text.NewCol(6, "Total", labelStyle),
		text.NewCol(3, fmt.Sprintf("%d", doc.TotalMale), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, fmt.Sprintf("%d", doc.TotalFemale), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	if doc.Notes != "" {
		m.AddRow(6, text.NewCol(12, "Special Conditions / Notes", labelStyle))
		m.AddRow(12, text.NewCol(12, doc.Notes, valueStyle))
	}

	m.AddRow(9, text.NewCol(12, "4. Acknowledgements", sectionStyle))
	m.AddRow(18,
		col.New(6).Add(
			text.New("Requester", labelStyle),
			text.New("Name: "+doc.Ack.RequesterName, props.Text{Top: 5, Size: 9}),
			text.New("Title/Role: "+doc.Ack.RequesterTitle, props.Text{Top: 9, Size: 9}),
			text.New("Date: "+doc.Ack.RequesterDate, props.Text{Top: 13, Size: 9}),
		),
		col.New(6).Add(
			text.New(doc.BrandName, labelStyle),
			text.New("Name: "+doc.Ack.BrandName, props.Text{Top: 5, Size: 9}),
			text.New("Date: "+doc.Ack.BrandDate, props.Text{Top: 9, Size: 9}),
		),
	)

	terms := "Terms accepted: " + yesNo(doc.TermsAccepted)
	if doc.TermsVersion != "" {
		terms += " · Version: " + doc.TermsVersion
	}
	if doc.TermsURL != "" {
		terms += " · " + doc.TermsURL
	}
	m.AddRow(8, text.NewCol(12, terms, props.Text{Size: 8, Top: 3}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("© %d %s · Reference %s", doc.Year, doc.BrandName, doc.RefID), props.Text{Size: 8}))

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

func partyCol(p Party) core.Col {
	contact := strings.Trim(p.Contact+" · "+p.Title, " ·")
	reach := strings.Trim(p.Phone+" · "+p.Email, " ·")
	return col.New(6).Add(
		text.New(p.Label, labelStyle),
		text.New(p.Company, props.Text{Top: 5, Size: 9}),
		text.New(p.Address, props.Text{Top: 9, Size: 9}),
		text.New(contact, props.Text{Top: 13, Size: 9}),
		text.New(reach, props.Text{Top: 17, Size: 9}),
	)
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
