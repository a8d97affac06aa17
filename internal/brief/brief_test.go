package brief

import (
	"strings"
	"testing"
)

func TestNormalizedDefaults(t *testing.T) {
	b := Brief{Name: "  Moon Garden  ", Ticker: " $mgdn "}.Normalized()
	if b.Name != "Moon Garden" {
		t.Errorf("expected trimmed name, got %q", b.Name)
	}
	if b.Ticker != "MGDN" {
		t.Errorf("expected ticker 'MGDN', got %q", b.Ticker)
	}
	if b.Colors.Primary != DefaultPrimary || b.Colors.Accent != DefaultAccent {
		t.Errorf("expected default colors, got %+v", b.Colors)
	}
}

func TestNormalizedKeepsExplicitColors(t *testing.T) {
	b := Brief{Name: "X", Colors: Colors{Primary: "#111111", Accent: "#222222"}}.Normalized()
	if b.Colors.Primary != "#111111" || b.Colors.Accent != "#222222" {
		t.Errorf("explicit colors must be kept, got %+v", b.Colors)
	}
}

func TestValidateRequiresNameOrDescription(t *testing.T) {
	if err := (Brief{Ticker: "ABC"}).Validate(); err == nil {
		t.Error("expected error when both name and description are empty")
	}
	if err := (Brief{Name: "Project"}).Validate(); err != nil {
		t.Errorf("name alone should be enough: %v", err)
	}
	if err := (Brief{Description: "A community token."}).Validate(); err != nil {
		t.Errorf("description alone should be enough: %v", err)
	}
}

func TestValidateAssetRefs(t *testing.T) {
	ok := []string{
		"",
		"data:image/png;base64,iVBORw0KGgo=",
		"/uploads/20260823T120000_logo.png",
	}
	for _, ref := range ok {
		b := Brief{Name: "X", Logo: ref}
		if err := b.Validate(); err != nil {
			t.Errorf("ref %q should be accepted: %v", ref, err)
		}
	}

	bad := []string{
		"https://cdn.example.com/logo.png",
		"http://evil/x.png",
		"/uploads/../../etc/passwd",
		"file:///etc/passwd",
	}
	for _, ref := range bad {
		b := Brief{Name: "X", Background: ref}
		if err := b.Validate(); err == nil {
			t.Errorf("ref %q should be rejected", ref)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := (Brief{Name: "Moon", Ticker: "MOON"}).Title(); got != "Moon" {
		t.Errorf("expected name, got %q", got)
	}
	if got := (Brief{Ticker: "MOON"}).Title(); got != "MOON" {
		t.Errorf("expected ticker fallback, got %q", got)
	}
}

func TestValidateErrorTruncatesLongRefs(t *testing.T) {
	b := Brief{Name: "X", Logo: "https://" + strings.Repeat("a", 200)}
	err := b.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 160 {
		t.Errorf("error message should not carry the whole ref: %d chars", len(err.Error()))
	}
}
