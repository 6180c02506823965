package claims_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoonjesung/go-opentoken/claims"
	"github.com/yoonjesung/go-opentoken/errs"
	"github.com/yoonjesung/go-opentoken/pairs"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateRequiresSubject(t *testing.T) {
	opts := claims.Defaults()
	_, err := claims.Create(pairs.New("role", "admin"), opts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadArgument))
}

func TestParseRequiresSubject(t *testing.T) {
	opts := claims.Defaults()
	_, err := claims.Parse(pairs.New("role", "admin"), opts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadArgument))
}

func TestCreateThenParseRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	opts := claims.Defaults()
	opts.Clock = fixedClock(now)

	created, err := claims.Create(pairs.New("subject", "foobar"), opts)
	require.NoError(t, err)

	parsed, err := claims.Parse(created, opts)
	require.NoError(t, err)

	subject, ok := parsed.Get("subject")
	require.True(t, ok)
	assert.Equal(t, "foobar", subject)

	keys := []string{claims.NotBefore, claims.NotOnOrAfter, claims.RenewUntil}
	for i, key := range keys {
		v, ok := parsed.Get(key)
		require.True(t, ok)
		_, err := time.Parse(time.RFC3339, v)
		require.NoError(t, err, "claim %s at position %d should be a valid RFC3339 timestamp", key, i)
	}
}

func TestParseLogicalOrderError(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createOpts := claims.Defaults()
	createOpts.Clock = fixedClock(createTime)
	createOpts.Lifetime = -100 * time.Second

	created, err := claims.Create(pairs.New("subject", "foobar"), createOpts)
	require.NoError(t, err)

	_, err = claims.Parse(created, createOpts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadClaim))
	assert.Contains(t, err.Error(), "Logical error in 'not-before' and 'not-on-or-after'.")
}

func TestParseExpired(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createOpts := claims.Defaults()
	createOpts.Clock = fixedClock(createTime)
	createOpts.Lifetime = 0

	created, err := claims.Create(pairs.New("subject", "foobar"), createOpts)
	require.NoError(t, err)

	parseOpts := createOpts
	parseOpts.Clock = fixedClock(createTime.Add(time.Second))

	_, err = claims.Parse(created, parseOpts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadClaim))
	assert.Contains(t, err.Error(), "This token has expired as of")
}

func TestParsePastRenewalLimit(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createOpts := claims.Defaults()
	createOpts.Clock = fixedClock(createTime)
	createOpts.Renewal = 0

	created, err := claims.Create(pairs.New("subject", "foobar"), createOpts)
	require.NoError(t, err)

	parseOpts := createOpts
	parseOpts.Clock = fixedClock(createTime.Add(time.Second))

	_, err = claims.Parse(created, parseOpts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadClaim))
	assert.Contains(t, err.Error(), "This token is past its renewal limit,")
}

func TestParseNotBeforeExceedsTolerance(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createOpts := claims.Defaults()
	createOpts.Clock = fixedClock(createTime)

	created, err := claims.Create(pairs.New("subject", "foobar"), createOpts)
	require.NoError(t, err)

	notBefore, ok := created.Get(claims.NotBefore)
	require.True(t, ok)

	parseOpts := createOpts
	parseOpts.Clock = fixedClock(createTime.Add(-1 * time.Hour))

	_, err = claims.Parse(created, parseOpts)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeBadClaim))
	assert.Equal(t, "opentoken: BAD_CLAIM: Must not use this token before "+notBefore+".", err.Error())
}

func TestParseWithinToleranceSucceeds(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	createOpts := claims.Defaults()
	createOpts.Clock = fixedClock(createTime)

	created, err := claims.Create(pairs.New("subject", "foobar"), createOpts)
	require.NoError(t, err)

	parseOpts := createOpts
	parseOpts.Clock = fixedClock(createTime.Add(-60 * time.Second))

	_, err = claims.Parse(created, parseOpts)
	assert.NoError(t, err)
}

func TestParseOffsetNaiveTimestampTreatedAsUTC(t *testing.T) {
	createTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	opts := claims.Defaults()
	opts.Clock = fixedClock(createTime)

	p := pairs.New(
		"subject", "foobar",
		claims.NotBefore, "2026-01-01T12:00:00",
		claims.NotOnOrAfter, "2026-01-01T12:05:00",
		claims.RenewUntil, "2026-01-02T00:00:00",
	)

	_, err := claims.Parse(p, opts)
	assert.NoError(t, err)
}
