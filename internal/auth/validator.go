// Package auth implements the single entry point used by every protected
// handler (spec §4.2): resolve the effective token for an environment and
// compare it, in constant time, against the one the caller presented.
package auth

import (
	"crypto/subtle"

	"fde/internal/deployconfig"
)

// Result is the outcome of Validate. Error is non-nil on failure; its text
// is deliberately inspected for the substring "token" by callers to choose
// between a 403 and a 400 response (spec §4.2/§7 — a documented convention,
// not an accident).
type Result struct {
	Valid bool
	Error string
	Env   *deployconfig.Environment
}

func invalid(msg string) Result { return Result{Valid: false, Error: msg} }

// Validate runs the ordered policy from spec §4.2 against the caller's
// claimed environment name and token.
func Validate(envName, token string, cfg *deployconfig.ResolvedConfig) Result {
	if envName == "" {
		return invalid("missing environment")
	}

	env, ok := cfg.Environments[envName]
	if !ok {
		return invalid("unknown environment")
	}

	effectiveToken := env.Token
	if effectiveToken == "" {
		effectiveToken = cfg.Token
	}
	if effectiveToken == "" {
		return invalid("no token configured for environment")
	}

	if token == "" {
		return invalid("missing authorization token")
	}

	if !constantTimeEqual(token, effectiveToken) {
		return invalid("invalid token")
	}

	return Result{Valid: true, Env: env}
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		// Still run the comparison against a same-length buffer so the
		// length mismatch itself doesn't leak through timing.
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
