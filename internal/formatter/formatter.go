// package formatter renders a resolved track and its cross-service links as a Telegram message
package formatter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Dialect is the Telegram rich-text markup the reply is written in.
type Dialect string

const (
	MarkdownV1 Dialect = "v1"
	MarkdownV2 Dialect = "v2"
)

const (
	emptyText     = "N/A"
	fallbackLabel = "(search)"
)

// ParseDialect maps a config value to a [Dialect]. The empty string selects [MarkdownV1].
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case "", MarkdownV1:
		return MarkdownV1, nil
	case MarkdownV2:
		return MarkdownV2, nil
	default:
		return "", fmt.Errorf("%w: unknown markdown dialect %q", shared.ErrInvalidConfig, s)
	}
}

// ParseMode returns the Telegram parse mode matching the dialect.
func (d Dialect) ParseMode() tgmodels.ParseMode {
	if d == MarkdownV2 {
		return tgmodels.ParseModeMarkdown
	}
	return tgmodels.ParseModeMarkdownV1
}

const v1Specials = "_*`["

var v1Escaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// Escape escapes text for use outside an entity. Blank text becomes "N/A".
//
// Legacy Markdown only treats a backslash as an escape in front of one of _ * ` [, so backslashes are kept as-is.
func Escape(text string, d Dialect) string {
	if strings.TrimSpace(text) == "" {
		return emptyText
	}
	if d == MarkdownV2 {
		return bot.EscapeMarkdown(strings.ReplaceAll(text, `\`, `\\`))
	}
	return v1Escaper.Replace(text)
}

// Bold wraps text in a bold entity. Blank text becomes a bold "N/A".
//
// Legacy Markdown does not allow escapes inside an entity, so in [MarkdownV1] the entity is closed before each
// special character and reopened after it: "2*2=4" becomes *2*\**2=4*.
func Bold(text string, d Dialect) string {
	if strings.TrimSpace(text) == "" {
		return "*" + emptyText + "*"
	}
	if d == MarkdownV2 {
		return "*" + Escape(text, d) + "*"
	}

	var b, run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString("*" + run.String() + "*")
			run.Reset()
		}
	}
	for _, r := range text {
		if strings.ContainsRune(v1Specials, r) {
			flush()
			b.WriteString(`\` + string(r))
			continue
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

// escapeURL escapes a link target. Inside MarkdownV2 inline links only ")" and "\" are special.
func escapeURL(link string, d Dialect) string {
	if d == MarkdownV2 {
		return strings.NewReplacer(`\`, `\\`, ")", `\)`).Replace(link)
	}
	return link
}

// Formatter renders replies in service-table order.
type Formatter struct {
	descriptors []models.ServiceDescriptor
	dialect     Dialect
}

// New creates a formatter. descriptors fixes the order and display names of link lines.
func New(descriptors []models.ServiceDescriptor, d Dialect) *Formatter {
	return &Formatter{descriptors: descriptors, dialect: d}
}

// Dialect returns the markup dialect replies are written in.
func (f *Formatter) Dialect() Dialect {
	return f.dialect
}

func (f *Formatter) index(id models.ServiceID) int {
	return slices.IndexFunc(f.descriptors, func(d models.ServiceDescriptor) bool { return d.ID == id })
}

func (f *Formatter) displayName(id models.ServiceID) string {
	if i := f.index(id); i >= 0 {
		return f.descriptors[i].DisplayName
	}
	return string(id)
}

func (f *Formatter) header(ref models.TrackReference) string {
	sep := " - "
	if f.dialect == MarkdownV2 {
		sep = ` \- `
	}
	return Bold(ref.Performer, f.dialect) + sep + Bold(ref.Title, f.dialect)
}

func (f *Formatter) link(id models.ServiceID, url string, fallback bool) string {
	label := f.displayName(id)
	if fallback {
		label += " " + fallbackLabel
	}
	return "[" + Escape(label, f.dialect) + "](" + escapeURL(url, f.dialect) + ")"
}

// Format builds the reply: the header, the origin link, then one line per result that carries a URL.
func (f *Formatter) Format(ref models.TrackReference, results []models.CrossServiceResult) string {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b models.CrossServiceResult) int {
		return f.index(a.Service) - f.index(b.Service)
	})

	lines := []string{f.header(ref), "", f.link(ref.Origin, ref.SourceURL, false)}
	for _, r := range ordered {
		if !r.Found() || r.Service == ref.Origin {
			continue
		}
		lines = append(lines, f.link(r.Service, r.URL, r.Fallback))
	}
	return strings.Join(lines, "\n")
}

// Plain renders the same reply without markup, for terminals and logs.
func (f *Formatter) Plain(ref models.TrackReference, results []models.CrossServiceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", orNA(ref.Performer), orNA(ref.Title))
	fmt.Fprintf(&b, "%s: %s\n", f.displayName(ref.Origin), ref.SourceURL)
	for _, r := range results {
		switch {
		case r.Service == ref.Origin:
		case r.Found() && r.Fallback:
			fmt.Fprintf(&b, "%s %s: %s\n", f.displayName(r.Service), fallbackLabel, r.URL)
		case r.Found():
			fmt.Fprintf(&b, "%s: %s\n", f.displayName(r.Service), r.URL)
		}
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyText
	}
	return s
}
