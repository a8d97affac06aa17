package page

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Validation rule identifiers, checked in this fixed order.
const (
	RuleStructure        = "structure"
	RuleExternalResource = "external-resource"
	RuleGenericHeading   = "generic-heading"
)

// Failure reasons surfaced to revision prompts and, on exhaustion, to callers.
const (
	reasonStructure        = "not a valid single-file HTML document"
	reasonExternalResource = "contains external resource references"
	reasonGenericHeading   = "uses a generic, non-specific section heading"
)

// Violation is one violated rule with its human-readable reason.
type Violation struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// Verdict is the result of one validation pass. Checking short-circuits on
// the first failing rule so the reason stays singular and actionable.
type Verdict struct {
	Violations []Violation `json:"violations,omitempty"`
}

// OK reports whether the document passed every rule.
func (v Verdict) OK() bool { return len(v.Violations) == 0 }

// Reason returns the first (and only) failure reason, or "".
func (v Verdict) Reason() string {
	if len(v.Violations) == 0 {
		return ""
	}
	return v.Violations[0].Reason
}

// bannedHeadings are heading texts that mark a page as template filler.
var bannedHeadings = []string{"fast", "customizable", "reliable"}

// externalHostFragments is the deny-list of common CDN and font hosts.
var externalHostFragments = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"cdn.jsdelivr.net",
	"cdnjs.cloudflare.com",
	"unpkg.com",
	"bootstrapcdn.com",
	"fontawesome.com",
	"use.typekit.net",
	"cdn.tailwindcss.com",
	"ajax.googleapis.com",
}

var (
	reLinkTag   = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	reScriptSrc = regexp.MustCompile(`(?is)<script\b[^>]*\bsrc\s*=`)
	reCSSImport = regexp.MustCompile(`(?i)@import\b`)
	reIframe    = regexp.MustCompile(`(?i)<iframe\b`)
	reRelSheet  = regexp.MustCompile(`(?i)\brel\s*=\s*["']?stylesheet`)
	reHref      = regexp.MustCompile(`(?i)\bhref\s*=`)
)

// Check validates a candidate document against the fixed rule set:
// structural validity, then external resource references, then banned
// generic headings. It stops at the first violated rule.
func Check(doc string) Verdict {
	if v := checkStructure(doc); v != nil {
		return Verdict{Violations: []Violation{*v}}
	}
	if v := checkExternalResources(doc); v != nil {
		return Verdict{Violations: []Violation{*v}}
	}
	if v := checkHeadings(doc); v != nil {
		return Verdict{Violations: []Violation{*v}}
	}
	return Verdict{}
}

// checkStructure requires the trimmed output to open with the doctype
// declaration. Empty output fails here too (malformed upstream output is
// treated as a structural failure).
func checkStructure(doc string) *Violation {
	trimmed := strings.TrimSpace(doc)
	if !strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") {
		return &Violation{Rule: RuleStructure, Reason: reasonStructure}
	}
	return nil
}

func checkExternalResources(doc string) *Violation {
	lower := strings.ToLower(doc)
	for _, host := range externalHostFragments {
		if strings.Contains(lower, host) {
			return &Violation{Rule: RuleExternalResource, Reason: reasonExternalResource}
		}
	}
	for _, tag := range reLinkTag.FindAllString(doc, -1) {
		if reRelSheet.MatchString(tag) && reHref.MatchString(tag) {
			return &Violation{Rule: RuleExternalResource, Reason: reasonExternalResource}
		}
	}
	if reScriptSrc.MatchString(doc) || reCSSImport.MatchString(doc) || reIframe.MatchString(doc) {
		return &Violation{Rule: RuleExternalResource, Reason: reasonExternalResource}
	}
	return nil
}

// checkHeadings walks the parsed document rather than regex-scraping it, so
// nested markup inside headings is handled (<h2><em>Fast</em></h2> still
// counts).
func checkHeadings(doc string) *Violation {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		// html.Parse almost never errors; treat an unparseable document as
		// structurally invalid.
		return &Violation{Rule: RuleStructure, Reason: reasonStructure}
	}

	var violation *Violation
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if violation != nil {
			return
		}
		if n.Type == html.ElementNode && isHeading(n.Data) {
			text := strings.TrimSpace(nodeText(n))
			for _, banned := range bannedHeadings {
				if strings.EqualFold(text, banned) {
					violation = &Violation{Rule: RuleGenericHeading, Reason: reasonGenericHeading}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return violation
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
