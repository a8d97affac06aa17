package page

import (
	"context"
	"errors"
	"strings"
	"testing"

	"launchpage/internal/brief"
	"launchpage/internal/config"
)

const validDoc = `<!doctype html><html><body><h1>Moon Garden</h1></body></html>`
const bannedDoc = `<!doctype html><html><body><h1>Fast</h1></body></html>`

// scriptedProvider returns queued responses (or errors) in order and records
// the prompts it received.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
	users     []string
}

func (p *scriptedProvider) Generate(_ context.Context, _, user string) (string, error) {
	i := p.calls
	p.calls++
	p.users = append(p.users, user)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.responses) {
		return p.responses[i], nil
	}
	return "", errors.New("scriptedProvider: no response queued")
}

func (p *scriptedProvider) IsConfigured() bool { return true }

func genConfig(retries int, onExhaustion string) config.Generation {
	return config.Generation{
		MaxRetries:     retries,
		TimeoutSeconds: 5,
		OnExhaustion:   onExhaustion,
	}
}

func testBrief() brief.Brief {
	return brief.Brief{Name: "Moon Garden", Ticker: "MGDN", Description: "A community token."}.Normalized()
}

func TestGenerateAcceptsFirstAttempt(t *testing.T) {
	p := &scriptedProvider{responses: []string{validDoc}}
	g := NewGenerator(p, genConfig(2, "fail"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", p.calls)
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", res.Attempts)
	}
	if res.History[0].PromptKind != PromptPrimary {
		t.Errorf("first attempt must use the primary prompt, got %q", res.History[0].PromptKind)
	}
	if res.HTML != validDoc {
		t.Errorf("unexpected document: %q", res.HTML)
	}
}

func TestGenerateRevisesAfterValidationFailure(t *testing.T) {
	p := &scriptedProvider{responses: []string{bannedDoc, validDoc}}
	g := NewGenerator(p, genConfig(2, "fail"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Attempts != 2 {
		t.Errorf("expected acceptance on attempt 2, got %d", res.Attempts)
	}
	if res.History[1].PromptKind != PromptRevision {
		t.Errorf("second attempt must use a revision prompt, got %q", res.History[1].PromptKind)
	}
	if !strings.Contains(p.users[1], "uses a generic, non-specific section heading") {
		t.Errorf("revision prompt must restate the failure reason, got: %s", p.users[1][:min(120, len(p.users[1]))])
	}
}

func TestGenerateAtMostRPlusOneCalls(t *testing.T) {
	for _, retries := range []int{0, 1, 2, 4} {
		p := &scriptedProvider{responses: []string{
			bannedDoc, bannedDoc, bannedDoc, bannedDoc, bannedDoc, bannedDoc,
		}}
		g := NewGenerator(p, genConfig(retries, "fail"))

		_, err := g.Generate(context.Background(), testBrief())
		if err == nil {
			t.Fatalf("retries=%d: expected exhaustion error", retries)
		}
		if p.calls != retries+1 {
			t.Errorf("retries=%d: expected %d calls, got %d", retries, retries+1, p.calls)
		}
	}
}

func TestGenerateExhaustionSurfacesLastReason(t *testing.T) {
	// Attempt 1 fails on structure, attempts 2 and 3 on the heading rule.
	// The terminal error must name the final reason, not the first.
	p := &scriptedProvider{responses: []string{"<div>not html</div>", bannedDoc, bannedDoc}}
	g := NewGenerator(p, genConfig(2, "fail"))

	_, err := g.Generate(context.Background(), testBrief())
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", exhausted.Attempts)
	}
	if exhausted.Reason != "uses a generic, non-specific section heading" {
		t.Errorf("expected the last attempt's reason, got %q", exhausted.Reason)
	}
}

func TestGenerateUpstreamErrorKind(t *testing.T) {
	quota := errors.New("quota exceeded")
	p := &scriptedProvider{errs: []error{quota}}
	g := NewGenerator(p, genConfig(0, "fail"))

	_, err := g.Generate(context.Background(), testBrief())
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !errors.Is(err, quota) {
		t.Error("expected the upstream cause to be wrapped")
	}
}

func TestGenerateUpstreamErrorConsumesAttempt(t *testing.T) {
	// Error on attempt 1, success on attempt 2, budget of 2 total.
	p := &scriptedProvider{errs: []error{errors.New("connection reset"), nil}, responses: []string{"", validDoc}}
	g := NewGenerator(p, genConfig(1, "fail"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Attempts != 2 || p.calls != 2 {
		t.Errorf("expected recovery on attempt 2 of 2, got attempts=%d calls=%d", res.Attempts, p.calls)
	}
	// No validation failure happened, so the retry is not a revision.
	if res.History[1].PromptKind != PromptPrimary {
		t.Errorf("retry after upstream error must reuse the primary prompt, got %q", res.History[1].PromptKind)
	}
}

func TestGenerateFallbackOnExhaustion(t *testing.T) {
	p := &scriptedProvider{responses: []string{bannedDoc, bannedDoc}}
	g := NewGenerator(p, genConfig(1, "fallback"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("fallback mode must not error on exhaustion: %v", err)
	}
	if !res.Fallback {
		t.Error("expected fallback result")
	}
	if v := Check(res.HTML); !v.OK() {
		t.Errorf("fallback document must pass validation, got %+v", v.Violations)
	}
	if p.calls != 2 {
		t.Errorf("fallback must not spend extra provider calls, got %d", p.calls)
	}
}

func TestGenerateEmptyOutputTreatedAsStructuralFailure(t *testing.T) {
	p := &scriptedProvider{responses: []string{"", validDoc}}
	g := NewGenerator(p, genConfig(1, "fail"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.History[0].FailureReason != "not a valid single-file HTML document" {
		t.Errorf("empty output must fail the structure rule, got %q", res.History[0].FailureReason)
	}
	if res.Attempts != 2 {
		t.Errorf("expected acceptance on attempt 2, got %d", res.Attempts)
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	fenced := "```html\n" + validDoc + "\n```"
	p := &scriptedProvider{responses: []string{fenced}}
	g := NewGenerator(p, genConfig(0, "fail"))

	res, err := g.Generate(context.Background(), testBrief())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.HTML != validDoc {
		t.Errorf("expected fence stripped, got %q", res.HTML)
	}
}

func TestGenerateNilProvider(t *testing.T) {
	g := NewGenerator(nil, genConfig(2, "fail"))
	if _, err := g.Generate(context.Background(), testBrief()); err == nil {
		t.Error("expected error with nil provider")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  <!doctype html>  ":           "<!doctype html>",
		"```html\n<!doctype html>\n```": "<!doctype html>",
		"```\n<!doctype html>\n```":     "<!doctype html>",
		"<!doctype html>":               "<!doctype html>",
		"```":                           "",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
