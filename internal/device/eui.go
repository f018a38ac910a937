package device

import "strings"

// NormalizeEUI canonicalizes a device EUI: every character that is not a
// hex digit is stripped, and the rest is lowercased. "A8-40-41-FD-FE-2B-9F-2B",
// "a84041:fdfe2b9f2b", and "A84041FDFE2B9F2B" all normalize to the same
// string. No length check happens here; validation is the caller's concern.
func NormalizeEUI(eui string) string {
	var b strings.Builder
	b.Grow(len(eui))
	for _, r := range eui {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}
