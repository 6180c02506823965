// Package opentoken implements the OpenToken binary token format: a
// compact, authenticated, encrypted envelope for carrying a small set of
// ordered key/value claims between cooperating parties that share a
// symmetric password.
//
// A Codec handles encoding (Create) and decoding (Parse) of tokens for a
// single password and cipher suite. It is safe for concurrent use: every
// call works over its own buffers and the derived key is immutable once
// the Codec is constructed.
package opentoken

import (
	"io"
	"time"

	"github.com/yoonjesung/go-opentoken/ciphersuite"
	"github.com/yoonjesung/go-opentoken/claims"
	"github.com/yoonjesung/go-opentoken/errs"
	"github.com/yoonjesung/go-opentoken/frame"
	"github.com/yoonjesung/go-opentoken/pairs"
)

// Re-export the ordered payload type and its constructor so callers do
// not need to import the pairs package directly for common use.
type (
	// Pair is a single ordered key/value entry.
	Pair = pairs.Pair
	// Pairs is an ordered sequence of key/value pairs.
	Pairs = pairs.Pairs
)

// NewPairs builds a Pairs value from alternating key, value arguments.
func NewPairs(kv ...string) Pairs { return pairs.New(kv...) }

// Re-export cipher suite identifiers.
type Suite = ciphersuite.Suite

const (
	SuiteNone         = ciphersuite.None
	SuiteAES256CBC    = ciphersuite.AES256CBC
	SuiteAES128CBC    = ciphersuite.AES128CBC
	SuiteTripleDESCBC = ciphersuite.TripleDESCBC
)

// Claim key names, re-exported for callers inspecting parsed payloads.
const (
	ClaimSubject      = claims.Subject
	ClaimNotBefore    = claims.NotBefore
	ClaimNotOnOrAfter = claims.NotOnOrAfter
	ClaimRenewUntil   = claims.RenewUntil
)

// Codec encodes and decodes OpenTokens for a fixed password, cipher
// suite, and timing configuration. The symmetric key is derived from the
// password once, at construction time, and cached for the Codec's
// lifetime (spec: "the derived key can be cached per (password, suite)
// at the caller's discretion — it is not mutated after derivation").
type Codec struct {
	key    []byte
	suite  ciphersuite.Suite
	claims claims.Options
	frame  frame.Options
}

// Option configures a Codec constructed by New.
type Option func(*Codec)

// WithSuite sets the cipher suite. Defaults to SuiteAES128CBC (suite 2),
// matching the OpenToken reference implementation's default.
func WithSuite(suite Suite) Option {
	return func(c *Codec) { c.suite = suite }
}

// WithTolerance sets the not-before grace period. Defaults to 120s.
func WithTolerance(d time.Duration) Option {
	return func(c *Codec) { c.claims.Tolerance = d }
}

// WithLifetime sets the token lifetime used at Create time to compute
// not-on-or-after. Defaults to 300s.
func WithLifetime(d time.Duration) Option {
	return func(c *Codec) { c.claims.Lifetime = d }
}

// WithRenewal sets the renewal window used at Create time to compute
// renew-until. Defaults to 43200s (12h).
func WithRenewal(d time.Duration) Option {
	return func(c *Codec) { c.claims.Renewal = d }
}

// WithClock overrides the clock used for claim creation and validation.
// Defaults to time.Now. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Codec) { c.claims.Clock = clock }
}

// WithRand overrides the randomness source used for IV generation.
// Defaults to crypto/rand.Reader. Intended for tests.
func WithRand(r io.Reader) Option {
	return func(c *Codec) { c.frame.Rand = r }
}

// WithSalt overrides the PBKDF2 salt used for key derivation. Defaults
// to the format's fixed eight-byte zero salt. Overriding this makes
// tokens incompatible with peers using the default salt; only use this
// if all cooperating parties agree on the same override.
func WithSalt(salt []byte) Option {
	return func(c *Codec) { c.frame.Salt = salt }
}

// New returns a Codec that encrypts and authenticates tokens using
// password. password may be nil, which is treated as an empty password.
func New(password []byte, opts ...Option) (*Codec, error) {
	c := &Codec{
		suite:  ciphersuite.AES128CBC,
		claims: claims.Defaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.suite.Valid() {
		return nil, errs.BadArgumentf("invalid cipher suite: %d", c.suite)
	}
	key, err := ciphersuite.DeriveKey(password, c.suite, c.frame.Salt)
	if err != nil {
		return nil, err
	}
	c.key = key
	return c, nil
}

// NewFromPassword is a convenience constructor that accepts a password
// string and converts it to UTF-8 bytes, since Go callers most often
// have a string rather than a []byte password in hand.
func NewFromPassword(password string, opts ...Option) (*Codec, error) {
	return New([]byte(password), opts...)
}

// Create builds an OpenToken string from pairs. pairs must contain a
// "subject" entry; Create appends not-before, not-on-or-after, and
// renew-until timestamps computed from the Codec's configured timing.
func (c *Codec) Create(p Pairs) (string, error) {
	withClaims, err := claims.Create(p, c.claims)
	if err != nil {
		return "", err
	}
	return frame.EncodeWithKey(withClaims, c.suite, c.key, c.frame)
}

// Parse decodes and authenticates otk, then validates its temporal
// claims. It returns the decoded ordered payload, including the three
// timestamp claims appended by Create.
func (c *Codec) Parse(otk string) (Pairs, error) {
	decoded, err := frame.DecodeWithKey(otk, c.suite, c.key, c.frame)
	if err != nil {
		return nil, err
	}
	return claims.Parse(decoded, c.claims)
}
