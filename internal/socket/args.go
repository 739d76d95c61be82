// internal/socket/args.go
package socket

import "encoding/json"

// Args holds the positional arguments of an inbound frame. Accessors are
// lenient: a missing or malformed argument decodes to the zero value rather
// than raising an error, matching the protocol's graceful-degradation policy.
type Args []json.RawMessage

// String returns the i-th argument as a string, or "" if absent or invalid.
func (a Args) String(i int) string {
	var s string
	a.Decode(i, &s)
	return s
}

// Int returns the i-th argument as an int, or 0 if absent or invalid.
func (a Args) Int(i int) int {
	var n int
	a.Decode(i, &n)
	return n
}

// Bool returns the i-th argument as a bool, or false if absent or invalid.
func (a Args) Bool(i int) bool {
	var b bool
	a.Decode(i, &b)
	return b
}

// StringSlice returns the i-th argument as a list of strings, or nil.
func (a Args) StringSlice(i int) []string {
	var s []string
	a.Decode(i, &s)
	return s
}

// Decode unmarshals the i-th argument into v. Returns false if the argument
// is missing or does not decode.
func (a Args) Decode(i int, v interface{}) bool {
	if i < 0 || i >= len(a) {
		return false
	}
	return json.Unmarshal(a[i], v) == nil
}
