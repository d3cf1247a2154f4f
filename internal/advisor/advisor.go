// Package advisor turns an issue label into tenant-facing legal guidance
// using a remote text-generation model. Remote failures never reach the
// caller: they degrade to fixed fallbacks.
package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-portal/internal/observability"
)

const (
	FallbackAdvice = "Unable to generate advice at the moment."
	FallbackDays   = 7
)

// Generator produces text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advisor builds prompts and applies fallbacks around a Generator.
type Advisor struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// New constructs an Advisor. A nil generator always yields fallbacks.
func New(gen Generator, timeout time.Duration, logger *zap.SugaredLogger) *Advisor {
	return &Advisor{gen: gen, timeout: timeout, logger: logger}
}

// Advice returns a formal complaint letter the tenant can send.
func (a *Advisor) Advice(ctx context.Context, tenant, state, label string) string {
	text, err := a.generate(ctx, advicePrompt(tenant, state, label))
	if err != nil || text == "" {
		a.logger.Warnw("advice generation failed, using fallback", "label", label, "error", err)
		observability.IncAdvisorFallback("advice")
		return FallbackAdvice
	}
	return text
}

// CureDays estimates the statutory number of days a landlord has to fix
// the issue before the tenant can file a claim.
func (a *Advisor) CureDays(ctx context.Context, state, label string) int {
	text, err := a.generate(ctx, daysPrompt(state, label))
	if err != nil {
		a.logger.Warnw("cure period generation failed, using fallback", "label", label, "error", err)
		observability.IncAdvisorFallback("days")
		return FallbackDays
	}
	days, ok := parseDays(text)
	if !ok {
		a.logger.Warnw("cure period reply not an integer, using fallback", "label", label, "reply", text)
		observability.IncAdvisorFallback("days")
		return FallbackDays
	}
	return days
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	if a.gen == nil {
		return "", fmt.Errorf("no text generator configured")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.gen.Generate(ctx, prompt)
	return strings.TrimSpace(text), err
}

var integerPattern = regexp.MustCompile(`-?\d+`)

func parseDays(text string) (int, bool) {
	match := integerPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	days, err := strconv.Atoi(match)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

func advicePrompt(tenant, state, label string) string {
	return fmt.Sprintf("Act as a legal expert in housing and tenant rights.\n\n"+
		"Create a formal legal complaint letter that a tenant named '%s' "+
		"living in the state of '%s' can send to their landlord.\n\n"+
		"The complaint is about the following issue: '%s'.\n\n"+
		"The letter should:\n"+
		"- Mention relevant state-specific tenant rights and repair laws (for %s)\n"+
		"- Formally demand that the landlord fixes the issue\n"+
		"- Specify a reasonable time frame for repair (e.g., 7 days)\n"+
		"- Clearly state possible legal consequences (withholding rent, small claims court, health dept.)\n"+
		"- Be written in a formal, professional tone\n"+
		"- Assume the tenant wants to stay polite but firm\n\n"+
		"Output the complete legal letter ready to be copied and sent.",
		tenant, state, label, state)
}

func daysPrompt(state, label string) string {
	return fmt.Sprintf("Act as a legal expert specializing in housing and tenant rights. "+
		"Determine the statutory period, the number of days a landlord has to fix an issue "+
		"before a tenant can file a legal claim, based on state law.\n"+
		"State: %s\nIssue: %s\n"+
		"Provide ONLY one integer (days).", state, label)
}
