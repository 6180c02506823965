// Package pairs implements OpenToken's ordered key/value payload: an
// insertion-ordered sequence of string pairs, since the wire format
// encodes order and this core does not hide it behind a hash map.
package pairs

import (
	"encoding/json"
	"strings"

	"github.com/yoonjesung/go-opentoken/errs"
)

// Pair is a single key/value entry in an ordered payload.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered sequence of key/value pairs. Duplicate keys are not
// expected on the wire; when present, the last occurrence wins, matching
// spec.md's "duplicate keys are not expected and the last occurrence wins
// on parse."
type Pairs []Pair

// New builds a Pairs value from a flat list of alternating key, value
// arguments, e.g. New("subject", "alice", "role", "admin").
func New(kv ...string) Pairs {
	p := make(Pairs, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		p = p.Set(kv[i], kv[i+1])
	}
	return p
}

// Get returns the value for key and whether it was present.
func (p Pairs) Get(key string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p Pairs) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set appends key=value, or overwrites the value of the first existing
// occurrence of key in place, preserving that occurrence's position.
func (p Pairs) Set(key, value string) Pairs {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Pair{Key: key, Value: value})
}

// Append adds key=value to the end of p, even if key already occurs
// earlier. This mirrors the OpenToken wire behavior where decode keeps
// only the last occurrence, but lets encode-side callers construct such
// payloads deliberately (e.g. for round-trip / duplicate-key tests).
func (p Pairs) Append(key, value string) Pairs {
	return append(p, Pair{Key: key, Value: value})
}

// Clone returns a deep (element-wise) copy of p.
func (p Pairs) Clone() Pairs {
	out := make(Pairs, len(p))
	copy(out, p)
	return out
}

// Line serializes p to the OpenToken textual payload form:
// "key1=value1\nkey2=value2\n..." with no trailing newline.
func (p Pairs) Line() string {
	lines := make([]string, len(p))
	for i, kv := range p {
		lines[i] = kv.Key + "=" + kv.Value
	}
	return strings.Join(lines, "\n")
}

// ParseLine parses the OpenToken textual payload form into an ordered
// Pairs value. Empty lines are dropped; each non-empty line is split on
// its first "=". Lines with no "=" are rejected as malformed.
func ParseLine(line string) (Pairs, error) {
	rawLines := strings.Split(line, "\n")
	out := make(Pairs, 0, len(rawLines))
	for _, l := range rawLines {
		if l == "" {
			continue
		}
		idx := strings.IndexByte(l, '=')
		if idx < 0 {
			return nil, errs.Malformedf("invalid payload line: %q", l)
		}
		out = out.Set(l[:idx], l[idx+1:])
	}
	return out, nil
}

// ParseJSON decodes a JSON object string into an ordered Pairs value,
// preserving the key order as it appears in the JSON text. This supports
// spec.md's "payload may also be supplied as a JSON string that decodes
// to an ordered object" encode-side input.
func ParseJSON(jsonStr string) (Pairs, error) {
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	tok, err := dec.Token()
	if err != nil {
		return nil, errs.MalformedWrap(err, "invalid JSON payload")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errs.Malformed("JSON payload must be an object")
	}

	var out Pairs
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errs.MalformedWrap(err, "invalid JSON payload")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errs.Malformed("JSON payload keys must be strings")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, errs.MalformedWrap(err, "JSON payload values must be strings")
		}
		out = out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errs.MalformedWrap(err, "invalid JSON payload")
	}
	return out, nil
}

// Equal reports whether p and other contain the same key/value pairs in
// the same order.
func (p Pairs) Equal(other Pairs) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
