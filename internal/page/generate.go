// Package page holds the generation-and-validation loop: prompt building,
// the fixed validation rules, post-processing, and the local fallback page.
package page

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"launchpage/internal/brief"
	"launchpage/internal/config"
	"launchpage/internal/llm"
)

// Prompt kinds recorded per attempt.
const (
	PromptPrimary  = "primary"
	PromptRevision = "revision"
)

// Attempt is the transient record of one loop iteration. It exists for
// logging and tests only and is never persisted.
type Attempt struct {
	Number        int
	PromptKind    string
	Output        string
	FailureReason string
}

// Result is an accepted (or fallback) document plus loop bookkeeping.
type Result struct {
	HTML     string
	Attempts int
	Fallback bool
	History  []Attempt
}

// ExhaustedError is returned when every attempt failed validation. It
// carries the failure reason from the final attempt only.
type ExhaustedError struct {
	Attempts int
	Reason   string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %s", e.Attempts, e.Reason)
}

// UpstreamError is returned when the generation call itself failed on the
// final attempt (network, auth, quota).
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation call failed on attempt %d: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Generator runs the bounded generate-validate-revise loop. It holds no
// per-request state; one Generator is shared by all requests.
type Generator struct {
	provider    llm.Provider
	maxRetries  int
	callTimeout time.Duration
	fallback    bool
}

// NewGenerator creates a Generator from the generation config. The provider
// is injected so tests and callers control the upstream collaborator.
func NewGenerator(provider llm.Provider, cfg config.Generation) *Generator {
	return &Generator{
		provider:    provider,
		maxRetries:  cfg.MaxRetries,
		callTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		fallback:    cfg.OnExhaustion == "fallback",
	}
}

// Generate produces a validated landing page for the brief, spending at most
// maxRetries+1 provider calls. The loop is strictly sequential: a revision
// attempt restates only the most recent failure reason.
func (g *Generator) Generate(ctx context.Context, b brief.Brief) (*Result, error) {
	if g.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	maxAttempts := g.maxRetries + 1
	var history []Attempt
	var lastFailure string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		kind := PromptPrimary
		user := BuildPrimaryPrompt(b)
		if lastFailure != "" {
			kind = PromptRevision
			user = BuildRevisionPrompt(b, lastFailure)
		}

		raw, err := g.generateOnce(ctx, user)
		if err != nil {
			// An upstream error consumes the attempt but yields nothing to
			// validate; the next attempt reuses the previous prompt kind.
			log.Printf("generation attempt %d/%d upstream error: %v", attempt, maxAttempts, err)
			history = append(history, Attempt{Number: attempt, PromptKind: kind, FailureReason: err.Error()})
			if attempt == maxAttempts {
				return nil, &UpstreamError{Attempts: attempt, Err: err}
			}
			continue
		}

		doc := normalize(raw)
		verdict := Check(doc)
		if verdict.OK() {
			history = append(history, Attempt{Number: attempt, PromptKind: kind, Output: doc})
			return &Result{HTML: doc, Attempts: attempt, History: history}, nil
		}

		lastFailure = verdict.Reason()
		history = append(history, Attempt{Number: attempt, PromptKind: kind, Output: doc, FailureReason: lastFailure})
		log.Printf("generation attempt %d/%d rejected: %s", attempt, maxAttempts, lastFailure)
	}

	if g.fallback {
		log.Printf("generation exhausted after %d attempt(s), serving fallback page", maxAttempts)
		return &Result{HTML: Fallback(b), Attempts: maxAttempts, Fallback: true, History: history}, nil
	}
	return nil, &ExhaustedError{Attempts: maxAttempts, Reason: lastFailure}
}

// generateOnce performs a single provider call under the configured deadline.
func (g *Generator) generateOnce(ctx context.Context, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	return g.provider.Generate(callCtx, systemPrompt, user)
}

// normalize trims the provider output and strips a single wrapping markdown
// code fence, which models add despite instructions.
func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (``` or ```html).
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
