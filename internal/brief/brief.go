// Package brief defines the project brief: the immutable input a landing
// page is generated from.
package brief

import (
	"fmt"
	"strings"
)

// Placeholder tokens the generated markup carries instead of asset payloads.
// Real asset data is spliced in after generation so large images never ride
// the outbound prompt.
const (
	LogoToken       = "__LOGO_SRC__"
	BackgroundToken = "__BACKGROUND_SRC__"
)

// Default color pair applied when the caller supplies none.
const (
	DefaultPrimary = "#6c5ce7"
	DefaultAccent  = "#00d1b2"
)

// Colors is the primary/accent pair driving the page theme.
type Colors struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// Brief describes the project to generate a landing page for. It is
// constructed once per request and never mutated afterwards.
type Brief struct {
	Name        string `json:"name"`
	Ticker      string `json:"ticker"`
	Description string `json:"description"`
	Telegram    string `json:"telegram,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Colors      Colors `json:"colors"`
	// Logo and Background are either data URIs or /uploads/ paths returned
	// by the upload endpoint.
	Logo       string `json:"logo,omitempty"`
	Background string `json:"background,omitempty"`
}

// Normalized returns a copy with whitespace trimmed and defaults applied.
func (b Brief) Normalized() Brief {
	b.Name = strings.TrimSpace(b.Name)
	b.Ticker = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(b.Ticker), "$")))
	b.Description = strings.TrimSpace(b.Description)
	b.Telegram = strings.TrimSpace(b.Telegram)
	b.Twitter = strings.TrimSpace(b.Twitter)
	b.Logo = strings.TrimSpace(b.Logo)
	b.Background = strings.TrimSpace(b.Background)
	if b.Colors.Primary == "" {
		b.Colors.Primary = DefaultPrimary
	}
	if b.Colors.Accent == "" {
		b.Colors.Accent = DefaultAccent
	}
	return b
}

// Validate checks the brief is complete enough to generate from.
func (b Brief) Validate() error {
	if b.Name == "" && b.Description == "" {
		return fmt.Errorf("brief needs at least a name or a description")
	}
	if err := validateAssetRef("logo", b.Logo); err != nil {
		return err
	}
	if err := validateAssetRef("background", b.Background); err != nil {
		return err
	}
	return nil
}

// validateAssetRef accepts data URIs and local upload paths only. Remote
// URLs are rejected so substitution can never reintroduce an external
// resource reference into the accepted document.
func validateAssetRef(field, ref string) error {
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "data:image/") {
		return nil
	}
	if strings.HasPrefix(ref, "/uploads/") && !strings.Contains(ref, "..") {
		return nil
	}
	return fmt.Errorf("%s must be a data URI or an uploaded file path, got %q", field, truncate(ref, 64))
}

// HasLogo reports whether a logo asset was supplied.
func (b Brief) HasLogo() bool { return b.Logo != "" }

// HasBackground reports whether a background asset was supplied.
func (b Brief) HasBackground() bool { return b.Background != "" }

// Title returns the display title: name, falling back to ticker.
func (b Brief) Title() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Ticker
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
