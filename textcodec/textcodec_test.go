package textcodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoonjesung/go-opentoken/textcodec"
)

func TestToOTK(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no padding", "YWJj", "YWJj"},
		{"single pad", "YWI=", "YWI*"},
		{"double pad", "YQ==", "YQ**"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, textcodec.ToOTK(c.in))
		})
	}
}

func TestFromOTK(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no padding", "YWJj", "YWJj"},
		{"single pad", "YWI*", "YWI="},
		{"double pad", "YQ**", "YQ=="},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, textcodec.FromOTK(c.in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"YWJj",
		"YWI=",
		"YQ==",
		"",
		"A",
	}
	for _, in := range inputs {
		got := textcodec.FromOTK(textcodec.ToOTK(in))
		assert.Equal(t, in, got, "round trip for %q", in)
	}
}
