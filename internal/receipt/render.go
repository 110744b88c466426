package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"feeledger/internal/core"
)

// Markers delimiting one receipt inside a rendered page. Merge relies on
// them to lift receipts out of individual files.
const (
	beginMarker = "<!-- receipt:begin -->"
	endMarker   = "<!-- receipt:end -->"
)

var (
	markdownOnce     sync.Once
	markdownInstance goldmark.Markdown
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: serif; font-size: 16pt; margin: 2.54cm 3.17cm; }
.addressee { font-weight: bold; }
.body p { text-indent: 2em; }
.signature, .date { text-align: right; margin: 0.2em 0; }
hr.cut { border: none; border-top: 1px dashed #000; margin: 1.5em 0; }
.page-break { page-break-after: always; break-after: page; }
</style>
</head>
<body>
{{range $i, $r := .Receipts}}{{if $i}}<div class="page-break"></div>
{{end}}{{$r}}
{{end}}</body>
</html>
`))

// html/template strips comments from template text, so the markers are
// added around the executed fragment instead.
var receiptTemplate = template.Must(template.New("receipt").Parse(`<article class="receipt">
{{range $i, $s := .Sections}}{{if $i}}<hr class="cut">
{{end}}<section>
<p class="addressee">{{$s.Addressee}}</p>
<div class="body">{{$s.Body}}</div>
<p class="signature">{{$s.Signature}}</p>
<p class="date">{{$.DueDate}}</p>
</section>
{{end}}</article>`))

type renderedSection struct {
	Addressee string
	Body      template.HTML
	Signature string
}

// FieldsFor builds the template data for rec at 1-based position index.
func (t *Template) FieldsFor(rec core.FeeRecord, index int) Fields {
	return Fields{
		Index:         index,
		Department:    rec.Department,
		Year:          rec.Year,
		Month:         rec.Month,
		MonthPadded:   fmt.Sprintf("%02d", rec.Month),
		Amount:        rec.Amount.String(),
		DueDate:       rec.DueDate,
		Payer:         t.Payer,
		Receiver:      t.Receiver,
		SourceAccount: t.SourceAccount,
		TargetAccount: t.TargetAccount,
	}
}

// RenderReceipt renders the receipt fragment for one record, without the
// surrounding page.
func (t *Template) RenderReceipt(rec core.FeeRecord, index int) (template.HTML, error) {
	f := t.FieldsFor(rec, index)

	sections := make([]renderedSection, 0, len(t.compiled))
	for _, cs := range t.compiled {
		addressee, err := execute(cs.addressee, f)
		if err != nil {
			return "", err
		}
		body, err := execute(cs.body, f)
		if err != nil {
			return "", err
		}
		signature, err := execute(cs.signature, f)
		if err != nil {
			return "", err
		}

		var html bytes.Buffer
		if err := markdown().Convert([]byte(body), &html); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		sections = append(sections, renderedSection{
			Addressee: addressee,
			Body:      template.HTML(html.String()),
			Signature: signature,
		})
	}

	var out bytes.Buffer
	err := receiptTemplate.Execute(&out, struct {
		Sections []renderedSection
		DueDate  string
	}{sections, rec.DueDate})
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return template.HTML(beginMarker + "\n" + out.String() + "\n" + endMarker), nil
}

// Render writes a standalone HTML page holding the receipt for rec.
func (t *Template) Render(w io.Writer, rec core.FeeRecord, index int) error {
	fragment, err := t.RenderReceipt(rec, index)
	if err != nil {
		return err
	}
	return writePage(w, t.Title, []template.HTML{fragment})
}

func writePage(w io.Writer, title string, receipts []template.HTML) error {
	err := pageTemplate.Execute(w, struct {
		Title    string
		Receipts []template.HTML
	}{title, receipts})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
