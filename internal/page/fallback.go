package page

import (
	"bytes"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"launchpage/internal/brief"
)

var markdown = goldmark.New()

// reDenyText matches substrings that fail the external-resource rule even as
// plain, escaped text: the deny-listed hosts and the @import keyword.
var reDenyText = func() *regexp.Regexp {
	parts := make([]string, 0, len(externalHostFragments)+1)
	for _, h := range externalHostFragments {
		parts = append(parts, regexp.QuoteMeta(h))
	}
	parts = append(parts, `@import`)
	return regexp.MustCompile(`(?i)` + strings.Join(parts, "|"))
}()

const fallbackTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%[1]s</title>
<style>
:root { --primary: %[2]s; --accent: %[3]s; }
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  background: linear-gradient(160deg, var(--primary), #0d0d1a 70%%);
  background-image: url('__BACKGROUND_SRC__');
  background-size: cover;
  color: #f4f4f8;
  min-height: 100vh;
}
header { text-align: center; padding: 18vh 1.5rem 8vh; }
header img { max-height: 120px; margin-bottom: 1.5rem; }
h1 { font-size: clamp(2.2rem, 7vw, 4.5rem); letter-spacing: -0.02em; }
.ticker { color: var(--accent); font-size: 1.4rem; margin-top: 0.6rem; font-weight: 600; }
main { max-width: 680px; margin: 0 auto; padding: 0 1.5rem 4rem; line-height: 1.7; }
main a { color: var(--accent); }
footer { text-align: center; padding: 2rem 1.5rem 4rem; }
footer a {
  display: inline-block; margin: 0 0.75rem; padding: 0.7rem 1.6rem;
  border: 1px solid var(--accent); border-radius: 999px;
  color: var(--accent); text-decoration: none; font-weight: 600;
}
</style>
</head>
<body>
<header>
<img src="__LOGO_SRC__" alt="%[1]s logo">
<h1>%[4]s</h1>
%[5]s
</header>
<main>
%[6]s
</main>
<footer>
%[7]s
</footer>
</body>
</html>
`

// Fallback synthesizes a landing page locally from the brief, without any
// provider call, for deployments configured with on_exhaustion: fallback.
// The returned document passes the same validation rules as generated ones.
func Fallback(b brief.Brief) string {
	doc := renderFallback(b, renderDescription(b.Description))
	if Check(doc).OK() {
		return doc
	}
	// The description markdown smuggled in something the rules reject
	// (markup, a banned heading, a deny-listed host). Degrade to escaped
	// plain text with the offending fragments removed.
	log.Printf("fallback page rebuilt with sanitized description")
	clean := strings.TrimSpace(reDenyText.ReplaceAllString(b.Description, ""))
	if clean != "" {
		doc = renderFallback(b, "<p>"+html.EscapeString(clean)+"</p>")
		if Check(doc).OK() {
			return doc
		}
	}
	// A field outside the description still trips a rule. Scrub every
	// brief field and drop the description.
	log.Printf("fallback page rebuilt without description")
	return renderFallback(scrubBrief(b), "")
}

// scrubBrief removes rule-violating text fragments from the brief fields
// that end up in the fallback page.
func scrubBrief(b brief.Brief) brief.Brief {
	scrub := func(s string) string { return strings.TrimSpace(reDenyText.ReplaceAllString(s, "")) }
	b.Name = scrub(b.Name)
	b.Ticker = scrub(b.Ticker)
	b.Telegram = scrub(b.Telegram)
	b.Twitter = scrub(b.Twitter)
	b.Colors.Primary = scrub(b.Colors.Primary)
	b.Colors.Accent = scrub(b.Colors.Accent)
	return b
}

func renderFallback(b brief.Brief, descriptionHTML string) string {
	title := html.EscapeString(b.Title())

	heading := title
	for _, banned := range bannedHeadings {
		if strings.EqualFold(b.Title(), banned) {
			heading = title + " Official"
			break
		}
	}

	var ticker string
	if b.Ticker != "" {
		ticker = fmt.Sprintf(`<p class="ticker">$%s</p>`, html.EscapeString(b.Ticker))
	}

	var links []string
	if b.Telegram != "" {
		links = append(links, fmt.Sprintf(`<a href="%s">Telegram</a>`, html.EscapeString(b.Telegram)))
	}
	if b.Twitter != "" {
		links = append(links, fmt.Sprintf(`<a href="%s">Twitter</a>`, html.EscapeString(b.Twitter)))
	}

	return fmt.Sprintf(fallbackTemplate,
		title,
		html.EscapeString(b.Colors.Primary),
		html.EscapeString(b.Colors.Accent),
		heading,
		ticker,
		descriptionHTML,
		strings.Join(links, "\n"),
	)
}

// renderDescription renders the brief description, which accepts markdown,
// into HTML for the fallback body.
func renderDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(description), &buf); err != nil {
		return "<p>" + html.EscapeString(description) + "</p>"
	}
	return buf.String()
}
