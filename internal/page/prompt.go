package page

import (
	"fmt"
	"strings"

	"launchpage/internal/brief"
)

// systemPrompt states the non-negotiable constraints. Revision prompts
// repeat them, so a failed attempt never loses the ground rules.
const systemPrompt = `You are a senior front-end developer who builds striking single-file marketing landing pages for crypto and web3 projects.

Rules you must never break:
- Respond with exactly one complete HTML document and nothing else. No explanations, no markdown code fences.
- The document must start with <!doctype html>.
- All CSS and JavaScript must be inline in the document. Never reference external stylesheets, scripts, fonts, or iframes. No <link rel="stylesheet">, no <script src=...>, no @import, no CDN hosts, no Google Fonts.
- Section headings must be specific to the project. Never use bare generic headings like "Fast", "Customizable" or "Reliable".
- Use only system font stacks and inline SVG for decoration.`

const primaryPromptTemplate = `Build a landing page for this project:

%s
Theme it with CSS custom properties --primary: %s and --accent: %s.

%s
Include a hero section with the project name and a punchy tagline, an about section built from the description, and a footer with the social links (omit links that are not listed). Make it responsive and visually bold.`

// BuildPrimaryPrompt derives the first-attempt prompt deterministically from
// the brief. Asset payloads are never included; the model is told to place
// placeholder tokens where assets belong.
func BuildPrimaryPrompt(b brief.Brief) string {
	var facts strings.Builder
	if b.Name != "" {
		fmt.Fprintf(&facts, "Name: %s\n", b.Name)
	}
	if b.Ticker != "" {
		fmt.Fprintf(&facts, "Ticker: $%s\n", b.Ticker)
	}
	if b.Description != "" {
		fmt.Fprintf(&facts, "Description: %s\n", b.Description)
	}
	if b.Telegram != "" {
		fmt.Fprintf(&facts, "Telegram: %s\n", b.Telegram)
	}
	if b.Twitter != "" {
		fmt.Fprintf(&facts, "Twitter: %s\n", b.Twitter)
	}

	var assets strings.Builder
	if b.HasLogo() {
		fmt.Fprintf(&assets, "A logo image is available. Show it in the hero with exactly src=\"%s\" — the literal token, not a real URL.\n", brief.LogoToken)
	} else {
		assets.WriteString("No logo image is available; do not include a logo <img> element.\n")
	}
	if b.HasBackground() {
		fmt.Fprintf(&assets, "A background image is available. Reference it with the literal token %s (for example in a CSS background-image url).\n", brief.BackgroundToken)
	} else {
		assets.WriteString("No background image is available; use a gradient built from the theme colors instead.\n")
	}

	return fmt.Sprintf(primaryPromptTemplate, facts.String(), b.Colors.Primary, b.Colors.Accent, assets.String())
}

// BuildRevisionPrompt restates the single most recent failure and repeats
// the constraints for the next attempt.
func BuildRevisionPrompt(b brief.Brief, lastFailure string) string {
	return fmt.Sprintf(`Your previous attempt was rejected: %s.

Produce a corrected version. The constraints are unchanged: one complete HTML document starting with <!doctype html>, everything inline, no external stylesheets, scripts, fonts or iframes, and no generic section headings such as "Fast", "Customizable" or "Reliable".

%s`, lastFailure, BuildPrimaryPrompt(b))
}
