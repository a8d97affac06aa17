package page

import "testing"

func TestCheckAcceptsCleanDocument(t *testing.T) {
	doc := `<!doctype html><html><body><h1>Community-Led Liquidity</h1></body></html>`
	v := Check(doc)
	if !v.OK() {
		t.Errorf("expected clean document to pass, got %+v", v.Violations)
	}
}

func TestCheckMissingDoctype(t *testing.T) {
	v := Check(`<div>not html</div>`)
	if v.OK() {
		t.Fatal("expected structure violation")
	}
	if v.Violations[0].Rule != RuleStructure {
		t.Errorf("expected rule %q, got %q", RuleStructure, v.Violations[0].Rule)
	}
	if v.Reason() != "not a valid single-file HTML document" {
		t.Errorf("unexpected reason: %q", v.Reason())
	}
}

func TestCheckDoctypeCaseInsensitive(t *testing.T) {
	for _, doc := range []string{
		"<!DOCTYPE html><html></html>",
		"  \n<!doctype HTML><html></html>",
	} {
		if v := Check(doc); !v.OK() {
			t.Errorf("doc %q should pass structure check, got %+v", doc[:20], v.Violations)
		}
	}
}

func TestCheckEmptyOutput(t *testing.T) {
	for _, doc := range []string{"", "   \n\t "} {
		v := Check(doc)
		if v.OK() || v.Violations[0].Rule != RuleStructure {
			t.Errorf("empty output %q must fail the structure rule, got %+v", doc, v.Violations)
		}
	}
}

func TestCheckExternalStylesheet(t *testing.T) {
	doc := `<!doctype html><html><head><link rel='stylesheet' href='https://fonts.googleapis.com/x'></head></html>`
	v := Check(doc)
	if v.OK() {
		t.Fatal("expected external-resource violation")
	}
	if v.Violations[0].Rule != RuleExternalResource {
		t.Errorf("expected rule %q, got %q", RuleExternalResource, v.Violations[0].Rule)
	}
	if v.Reason() != "contains external resource references" {
		t.Errorf("unexpected reason: %q", v.Reason())
	}
}

func TestCheckExternalResourceVariants(t *testing.T) {
	cases := map[string]string{
		"script src":      `<!doctype html><html><script src="https://example.com/app.js"></script></html>`,
		"css import":      `<!doctype html><html><style>@import url("theme.css");</style></html>`,
		"iframe":          `<!doctype html><html><body><iframe src="x"></iframe></body></html>`,
		"cdn fragment":    `<!doctype html><html><body><img src="https://cdn.jsdelivr.net/x.png"></body></html>`,
		"stylesheet link": `<!doctype html><html><head><link href="a.css" rel="stylesheet"></head></html>`,
	}
	for name, doc := range cases {
		v := Check(doc)
		if v.OK() || v.Violations[0].Rule != RuleExternalResource {
			t.Errorf("%s: expected external-resource violation, got %+v", name, v.Violations)
		}
	}
}

func TestCheckAllowsLocalLinkTags(t *testing.T) {
	// A rel=icon link with a data URI is not an external stylesheet.
	doc := `<!doctype html><html><head><link rel="icon" href="data:image/png;base64,x"></head></html>`
	if v := Check(doc); !v.OK() {
		t.Errorf("expected icon link to pass, got %+v", v.Violations)
	}
}

func TestCheckBannedHeading(t *testing.T) {
	doc := `<!doctype html><html><body><h1>Fast</h1></body></html>`
	v := Check(doc)
	if v.OK() {
		t.Fatal("expected generic-heading violation")
	}
	if v.Violations[0].Rule != RuleGenericHeading {
		t.Errorf("expected rule %q, got %q", RuleGenericHeading, v.Violations[0].Rule)
	}
	if v.Reason() != "uses a generic, non-specific section heading" {
		t.Errorf("unexpected reason: %q", v.Reason())
	}
}

func TestCheckBannedHeadingVariants(t *testing.T) {
	rejected := []string{
		`<!doctype html><html><body><h3>CUSTOMIZABLE</h3></body></html>`,
		`<!doctype html><html><body><h2>  reliable  </h2></body></html>`,
		`<!doctype html><html><body><h2><em>Fast</em></h2></body></html>`,
	}
	for _, doc := range rejected {
		if v := Check(doc); v.OK() || v.Violations[0].Rule != RuleGenericHeading {
			t.Errorf("expected heading violation for %q, got %+v", doc, v.Violations)
		}
	}

	accepted := []string{
		// Banned words are only banned in isolation.
		`<!doctype html><html><body><h2>Fast Settlement on L2</h2></body></html>`,
		// Non-heading text is out of scope for the rule.
		`<!doctype html><html><body><p>fast</p></body></html>`,
	}
	for _, doc := range accepted {
		if v := Check(doc); !v.OK() {
			t.Errorf("expected %q to pass, got %+v", doc, v.Violations)
		}
	}
}

func TestCheckShortCircuitsOnFirstRule(t *testing.T) {
	// Violates structure AND headings; only the structure violation may
	// surface so the revision prompt stays singular.
	doc := `<html><body><h1>Fast</h1></body></html>`
	v := Check(doc)
	if len(v.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %d", len(v.Violations))
	}
	if v.Violations[0].Rule != RuleStructure {
		t.Errorf("expected the structure rule to win, got %q", v.Violations[0].Rule)
	}
}

func TestCheckIdempotentOnAcceptedDocument(t *testing.T) {
	doc := `<!doctype html><html><head><style>body{color:#111}</style></head><body><h1>Moon Garden</h1><h2>Tokenomics</h2></body></html>`
	for i := 0; i < 3; i++ {
		if v := Check(doc); !v.OK() {
			t.Fatalf("pass %d: accepted document re-validated with violations: %+v", i, v.Violations)
		}
	}
}
