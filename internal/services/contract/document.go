package contract

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/yuin/goldmark"
)

// Document is a contract laid out with the branding of its organization
type Document struct {
	Client   *models.Client
	Contract *models.Contract
	Settings *models.OrganizationSettings
}

// NewDocument pairs a contract with branding; nil settings use the defaults
func NewDocument(c *models.Client, k *models.Contract, settings *models.OrganizationSettings) *Document {
	if settings == nil {
		settings = models.DefaultSettings(c.OrganizationID)
	}
	return &Document{Client: c, Contract: k, Settings: settings}
}

// Markdown lays the contract out as a markdown document headed by the logo
func (d *Document) Markdown() string {
	c, k := d.Client, d.Contract
	var b strings.Builder
	if d.Settings.LogoURL != "" {
		fmt.Fprintf(&b, "![Logo](%s)\n\n", d.Settings.LogoURL)
	}
	fmt.Fprintf(&b, "# Contract: %s\n\n", c.FullName)
	if c.Address != "" {
		fmt.Fprintf(&b, "Job site: %s\n\n", c.Address)
	}
	b.WriteString("## Terms\n\n")
	if len(k.Terms) == 0 {
		b.WriteString("_No terms._\n\n")
	}
	for i, term := range k.Terms {
		fmt.Fprintf(&b, "%d. %s\n", i+1, term)
	}
	fmt.Fprintf(&b, "\n**Price:** %s\n", money(k.Price))
	if k.Notes != "" {
		fmt.Fprintf(&b, "\n> %s\n", k.Notes)
	}
	if k.IsSigned() {
		fmt.Fprintf(&b, "\nSigned by **%s** on %s\n", k.SignerName, k.SignedAt.Format("January 2, 2006"))
	} else {
		b.WriteString("\n_Draft, not signed._\n")
	}
	return b.String()
}

var page = template.Must(template.New("contract").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Contract: {{.Title}}</title>
<style>
@page { size: A4; margin: 0; }
body { margin: 0; font-family: sans-serif; }
.page { width: 210mm; min-height: 297mm; box-sizing: border-box;
  padding: {{.Padding.Top}}px {{.Padding.Right}}px {{.Padding.Bottom}}px {{.Padding.Left}}px;
  background-size: 100% 100%; background-repeat: no-repeat; }
</style>
</head>
<body>
<div class="page"{{with .Letterhead}} style="background-image: url('{{.}}')"{{end}}>
{{.Body}}
</div>
</body>
</html>
`))

// HTML renders a printable A4 page: the letterhead fills the background and
// the padding keeps the text clear of it
func (d *Document) HTML() ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(d.Markdown()), &body); err != nil {
		return nil, fmt.Errorf("failed to render contract: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title      string
		Letterhead string
		Padding    models.Padding
		Body       template.HTML
	}{
		Title:      d.Client.FullName,
		Letterhead: d.Settings.LetterheadURL,
		Padding:    d.Settings.Padding,
		// goldmark escapes raw HTML in the markdown unless WithUnsafe is set
		Body: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render contract: %w", err)
	}
	return out.Bytes(), nil
}

func money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", amount)
}
