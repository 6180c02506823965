// Package textcodec implements the OpenToken textual padding substitution:
// URL-safe Base64's "=" pad character is rewritten to "*" so the token is
// safe to embed in cookies, query strings, and form fields without further
// escaping.
package textcodec

import "strings"

// ToOTK rewrites the trailing Base64 padding of b64 from "=" to the
// OpenToken "*" pad character. At most two trailing pad characters exist
// in valid URL-safe Base64, so only the one- and two-character cases are
// handled; anything else is returned unchanged.
func ToOTK(b64 string) string {
	switch {
	case strings.HasSuffix(b64, "=="):
		return b64[:len(b64)-2] + "**"
	case strings.HasSuffix(b64, "="):
		return b64[:len(b64)-1] + "*"
	default:
		return b64
	}
}

// FromOTK is the inverse of ToOTK: it rewrites trailing "*" pad characters
// back to standard Base64 "=".
func FromOTK(otk string) string {
	switch {
	case strings.HasSuffix(otk, "**"):
		return otk[:len(otk)-2] + "=="
	case strings.HasSuffix(otk, "*"):
		return otk[:len(otk)-1] + "="
	default:
		return otk
	}
}
