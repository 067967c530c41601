// Package adminauth answers "is this caller an administrator". The check
// races an identity lookup against a fixed timeout and always returns a
// structured allow/deny result; no code path panics or returns a second
// error channel. Server-side routes run their own equivalent check in
// middleware; the duplication is deliberate, a client-facing result alone
// is not trustworthy.
package adminauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Deny reasons surfaced to callers.
const (
	ReasonNotAuthenticated = "Not authenticated"
	ReasonAccessDenied     = "Access denied"
	ReasonTimeout          = "Timeout"
)

// DefaultTimeout bounds the identity lookup for UI-facing checks.
const DefaultTimeout = 3 * time.Second

// User is the resolved identity of an admin caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityProvider resolves the current caller from a session. May be slow
// or fail; the gate bounds and absorbs both.
type IdentityProvider interface {
	GetUser(ctx context.Context) (*User, error)
}

// CheckResult is the outcome of an admin check. User is populated only when
// IsAdmin is true; Error is empty only on success.
type CheckResult struct {
	IsAdmin bool   `json:"isAdmin"`
	User    *User  `json:"user"`
	Error   string `json:"error,omitempty"`
}

// Gate checks identities against a configured email allow-list.
type Gate struct {
	provider  IdentityProvider
	allowlist []string
	timeout   time.Duration
}

// NewGate builds a gate from a comma-separated allow-list. Entries are
// trimmed and lowercased here so the comparison in CheckAccess is a plain
// equality. A non-positive timeout falls back to DefaultTimeout.
func NewGate(rawAllowList string, provider IdentityProvider, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{
		provider:  provider,
		allowlist: NormalizeAllowList(rawAllowList),
		timeout:   timeout,
	}
}

// NormalizeAllowList splits a comma-separated email list, trimming
// whitespace and lowercasing each entry. Empty entries are dropped.
func NormalizeAllowList(raw string) []string {
	normalized := []string{}
	for _, entry := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(entry))
		if email != "" {
			normalized = append(normalized, email)
		}
	}
	return normalized
}

// IsAllowed reports whether email is on the allow-list, ignoring case and
// surrounding whitespace.
func (g *Gate) IsAllowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range g.allowlist {
		if email == allowed {
			return true
		}
	}
	return false
}

type lookupOutcome struct {
	user *User
	err  error
}

// CheckAccess resolves the caller and matches them against the allow-list.
// The lookup is raced against the gate's timeout; on timeout the result
// carries the Timeout reason even if the lookup would have succeeded
// moments later. The lookup goroutine receives a context cancelled as soon
// as the race is decided so a well-behaved provider can stop early. A
// panicking provider is reported through the reason string.
func (g *Gate) CheckAccess(ctx context.Context) CheckResult {
	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	outcomes := make(chan lookupOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcomes <- lookupOutcome{err: panicError{msg: fmt.Sprint(r)}}
			}
		}()
		user, err := g.provider.GetUser(lookupCtx)
		outcomes <- lookupOutcome{user: user, err: err}
	}()

	select {
	case <-lookupCtx.Done():
		// Done fires for the gate's own deadline and for a cancelled parent
		// (client disconnect); only the former is a Timeout.
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			return CheckResult{IsAdmin: false, User: nil, Error: ReasonTimeout}
		}
		return CheckResult{IsAdmin: false, User: nil, Error: ReasonNotAuthenticated}
	case outcome := <-outcomes:
		if outcome.err != nil {
			reason := ReasonNotAuthenticated
			if isPanicMessage(outcome.err) {
				reason = outcome.err.Error()
			}
			return CheckResult{IsAdmin: false, User: nil, Error: reason}
		}
		if outcome.user == nil {
			return CheckResult{IsAdmin: false, User: nil, Error: ReasonNotAuthenticated}
		}
		if !g.IsAllowed(outcome.user.Email) {
			return CheckResult{IsAdmin: false, User: nil, Error: ReasonAccessDenied}
		}
		return CheckResult{IsAdmin: true, User: outcome.user}
	}
}

// isPanicMessage distinguishes recovered panics from ordinary lookup
// errors: panics surface their message as the deny reason, ordinary errors
// collapse into Not authenticated.
func isPanicMessage(err error) bool {
	_, ok := err.(panicError)
	return ok
}

type panicError struct{ msg string }

func (e panicError) Error() string { return e.msg }

// BearerToken extracts the session token from an Authorization header.
// Returns "" when the header is missing or not a bearer scheme; it does not
// itself decide admin status.
func BearerToken(authorization string) string {
	const prefix = "Bearer "
	if len(authorization) > len(prefix) && strings.EqualFold(authorization[:len(prefix)], prefix) {
		return strings.TrimSpace(authorization[len(prefix):])
	}
	return ""
}
