package pairs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoonjesung/go-opentoken/pairs"
)

func TestLineRoundTrip(t *testing.T) {
	p := pairs.New("foo", "bar", "bar", "baz")
	line := p.Line()
	assert.Equal(t, "foo=bar\nbar=baz", line)

	got, err := pairs.ParseLine(line)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("ParseLine(Line()) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLineDropsEmptyLines(t *testing.T) {
	got, err := pairs.ParseLine("foo=bar\n\nbar=baz\n")
	require.NoError(t, err)
	assert.Equal(t, pairs.New("foo", "bar", "bar", "baz"), got)
}

func TestParseLineLastOccurrenceWins(t *testing.T) {
	got, err := pairs.ParseLine("foo=bar\nfoo=qux")
	require.NoError(t, err)
	v, ok := got.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "qux", v)
	assert.Len(t, got, 1)
}

func TestParseLineRejectsMissingEquals(t *testing.T) {
	_, err := pairs.ParseLine("foo")
	assert.Error(t, err)
}

func TestParseJSONPreservesOrder(t *testing.T) {
	got, err := pairs.ParseJSON(`{"foo": "bar", "bar": "baz"}`)
	require.NoError(t, err)
	assert.Equal(t, pairs.New("foo", "bar", "bar", "baz"), got)
}

func TestParseJSONRejectsNonObject(t *testing.T) {
	_, err := pairs.ParseJSON(`["foo", "bar"]`)
	assert.Error(t, err)
}

func TestSetOverwritesInPlace(t *testing.T) {
	p := pairs.New("a", "1", "b", "2")
	p = p.Set("a", "99")
	assert.Equal(t, pairs.New("a", "99", "b", "2"), p)
}

func TestGetMissing(t *testing.T) {
	p := pairs.New("a", "1")
	_, ok := p.Get("missing")
	assert.False(t, ok)
}
