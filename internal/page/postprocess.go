package page

import (
	"regexp"
	"strings"

	"launchpage/internal/brief"
)

var (
	reLogoImg = regexp.MustCompile(`(?is)<img\b[^>]*` + brief.LogoToken + `[^>]*/?>`)
	reBgImg   = regexp.MustCompile(`(?is)<img\b[^>]*` + brief.BackgroundToken + `[^>]*/?>`)
	// A CSS declaration referencing the background token, e.g.
	// background-image: url('__BACKGROUND_SRC__');
	reBgDecl = regexp.MustCompile(`(?i)[a-z-]+\s*:\s*[^;{}]*` + brief.BackgroundToken + `[^;{}]*;?`)
)

// InjectAssets substitutes placeholder tokens with the caller-supplied asset
// sources. Sources are data URIs or paths relative to the site directory;
// absolute remote URLs never reach this point (the brief rejects them), so
// substitution cannot reintroduce an external resource reference. An empty
// source removes the elements and declarations that carried the token.
// The substitution is idempotent: a second pass finds no tokens.
func InjectAssets(doc, logoSrc, backgroundSrc string) string {
	if logoSrc != "" {
		doc = strings.ReplaceAll(doc, brief.LogoToken, logoSrc)
	} else {
		doc = reLogoImg.ReplaceAllString(doc, "")
		doc = strings.ReplaceAll(doc, brief.LogoToken, "")
	}

	if backgroundSrc != "" {
		doc = strings.ReplaceAll(doc, brief.BackgroundToken, backgroundSrc)
	} else {
		doc = reBgImg.ReplaceAllString(doc, "")
		doc = reBgDecl.ReplaceAllString(doc, "")
		doc = strings.ReplaceAll(doc, brief.BackgroundToken, "")
	}

	return doc
}
