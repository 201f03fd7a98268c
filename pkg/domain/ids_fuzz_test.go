//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseUserID checks that parsing never panics on arbitrary input and
// that accepted values round-trip unchanged.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParseUserID(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseUserID(parsed.String())
		if err != nil {
			t.Errorf("accepted ID failed round-trip: %v", err)
		}
		if roundTrip != parsed {
			t.Error("round-trip changed ID value")
		}
	})
}

// FuzzParseAllIDs checks that every ID type applies the same validation.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errRequest := ParseRequestID(input)
		_, errDomain := ParseDomainID(input)

		if (errUser == nil) != (errRequest == nil) || (errUser == nil) != (errDomain == nil) {
			t.Error("inconsistent validation across ID types")
		}
	})
}
