package renderer

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxLines bounds how many lines of input reach the renderer.
	MaxLines = 200
	// MaxLineLength is the per-line limit in runes before truncation.
	MaxLineLength = 500

	lineTruncatedMarker = "…"
	truncationNotice    = `<p class="truncated">[Document truncated: content exceeded the maximum length]</p>`
)

var (
	blankLineRun   = regexp.MustCompile(`\n{3,}`)
	sectionHeading = regexp.MustCompile(`^\d+\.\s+[A-Z ]+$`)
)

// Sanitize normalizes line endings, keeps at most one blank line between
// paragraphs and trims the text. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// FormatHTML converts plain agreement text into an HTML fragment.
// Numbered upper-case lines become section headings, blank lines become
// breaks, everything else a paragraph. Output is capped at MaxLines lines plus
// a single truncation notice.
func FormatHTML(text string) string {
	lines := strings.Split(Sanitize(text), "\n")

	out := make([]string, 0, min(len(lines), MaxLines)+1)
	for i, line := range lines {
		if i == MaxLines {
			out = append(out, truncationNotice)
			break
		}
		out = append(out, formatLine(line))
	}
	return strings.Join(out, "\n")
}

func formatLine(line string) string {
	line = truncateLine(stripControl(strings.TrimSpace(line)))
	switch {
	case line == "":
		return "<br>"
	case sectionHeading.MatchString(line):
		return `<h2 class="section">` + html.EscapeString(line) + "</h2>"
	default:
		return `<p class="clause">` + html.EscapeString(line) + "</p>"
	}
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func truncateLine(s string) string {
	if utf8.RuneCountInString(s) <= MaxLineLength {
		return s
	}
	return string([]rune(s)[:MaxLineLength]) + lineTruncatedMarker
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 30mm 25mm; }
body { font-family: "Times New Roman", serif; font-size: 11pt; line-height: 1.6; color: #111; }
h2.section { font-size: 12pt; font-weight: 600; margin: 18pt 0 6pt; }
p.clause { margin: 0 0 6pt; text-align: justify; }
p.truncated { font-style: italic; color: #555; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps a fragment produced by FormatHTML into a printable A4 document.
func Page(title, fragment string) (string, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(fragment),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
