// Package claims implements ClaimValidator: the temporal and semantic
// checks layered on top of the decoded OpenToken payload (subject
// presence, not-before/not-on-or-after/renew-until).
package claims

import (
	"time"

	"github.com/yoonjesung/go-opentoken/errs"
	"github.com/yoonjesung/go-opentoken/pairs"
)

// Claim key names used in the OpenToken payload.
const (
	Subject      = "subject"
	NotBefore    = "not-before"
	NotOnOrAfter = "not-on-or-after"
	RenewUntil   = "renew-until"
)

// Options configures ClaimValidator timing. The zero value is invalid;
// use Defaults() or construct explicitly.
type Options struct {
	// Tolerance is the grace period added to "now" when testing
	// not-before.
	Tolerance time.Duration
	// Lifetime is used at Create time to set not-on-or-after = now + Lifetime.
	Lifetime time.Duration
	// Renewal is used at Create time to set renew-until = now + Renewal.
	Renewal time.Duration
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Defaults returns the OpenToken default timing: 120s tolerance, 300s
// lifetime, 43200s (12h) renewal.
func Defaults() Options {
	return Options{
		Tolerance: 120 * time.Second,
		Lifetime:  300 * time.Second,
		Renewal:   43200 * time.Second,
		Clock:     time.Now,
	}
}

func (o Options) clock() func() time.Time {
	if o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

// Create validates that pairs contains a subject, then appends
// not-before, not-on-or-after, and renew-until timestamps (in that
// order) computed from opts relative to now.
func Create(p pairs.Pairs, opts Options) (pairs.Pairs, error) {
	if !p.Has(Subject) {
		return nil, errs.BadArgument("OpenToken missing 'subject'.")
	}

	clock := opts.clock()
	now := clock().UTC()
	notOnOrAfter := now.Add(opts.Lifetime)
	renewUntil := now.Add(opts.Renewal)

	out := p.Clone()
	out = out.Set(NotBefore, now.Format(time.RFC3339))
	out = out.Set(NotOnOrAfter, notOnOrAfter.Format(time.RFC3339))
	out = out.Set(RenewUntil, renewUntil.Format(time.RFC3339))
	return out, nil
}

// Parse validates the temporal claims in p against opts and the current
// time, returning p unchanged if valid.
func Parse(p pairs.Pairs, opts Options) (pairs.Pairs, error) {
	if !p.Has(Subject) {
		return nil, errs.BadArgument("OpenToken missing 'subject'.")
	}

	notBeforeStr, ok := p.Get(NotBefore)
	if !ok {
		return nil, errs.BadArgumentf("OpenToken missing '%s'.", NotBefore)
	}
	notOnOrAfterStr, ok := p.Get(NotOnOrAfter)
	if !ok {
		return nil, errs.BadArgumentf("OpenToken missing '%s'.", NotOnOrAfter)
	}
	renewUntilStr, ok := p.Get(RenewUntil)
	if !ok {
		return nil, errs.BadArgumentf("OpenToken missing '%s'.", RenewUntil)
	}

	notBefore, err := parseTimestamp(notBeforeStr)
	if err != nil {
		return nil, errs.BadArgumentf("invalid '%s' timestamp: %v", NotBefore, err)
	}
	notOnOrAfter, err := parseTimestamp(notOnOrAfterStr)
	if err != nil {
		return nil, errs.BadArgumentf("invalid '%s' timestamp: %v", NotOnOrAfter, err)
	}
	renewUntil, err := parseTimestamp(renewUntilStr)
	if err != nil {
		return nil, errs.BadArgumentf("invalid '%s' timestamp: %v", RenewUntil, err)
	}

	clock := opts.clock()
	now := clock().UTC()
	tolerance := now.Add(opts.Tolerance)

	if notBefore.After(notOnOrAfter) {
		return nil, errs.BadClaim("Logical error in 'not-before' and 'not-on-or-after'.")
	}

	if notBefore.After(now) && notBefore.After(tolerance) {
		return nil, errs.BadClaimf("Must not use this token before %s.", notBeforeStr)
	}

	if now.After(notOnOrAfter) {
		return nil, errs.BadClaimf("This token has expired as of %s.", notOnOrAfterStr)
	}

	if now.After(renewUntil) {
		return nil, errs.BadClaimf("This token is past its renewal limit, %s.", renewUntilStr)
	}

	return p, nil
}

// parseTimestamp parses an ISO-8601/RFC 3339 timestamp. Offset-naive
// timestamps are treated as UTC, matching spec behavior.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	// Fall back to a naive (offset-less) layout, treated as UTC.
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
