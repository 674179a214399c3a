package sconfig

import (
	"net/netip"
	"net/url"
	"strings"
	"unicode"
)

// Masker hides sensitive parts of a value for display.
type Masker interface {
	// Mask returns the display form of value.
	Mask(value string) string
}

// MaskerFunc adapts a function to a Masker.
type MaskerFunc func(value string) string

// Mask calls f.
func (f MaskerFunc) Mask(value string) string { return f(value) }

// secretMasker hides everything: hunter2 -> ********
type secretMasker struct{}

// SecretMasker returns a masker that hides the whole value. The output
// length does not depend on the input.
func SecretMasker() Masker {
	return secretMasker{}
}

func (secretMasker) Mask(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}

// emailMasker masks email format: alice@example.com -> a***@example.com
type emailMasker struct{}

// EmailMasker returns a masker for email addresses.
// Preserves first character of local part and full domain.
func EmailMasker() Masker {
	return emailMasker{}
}

func (emailMasker) Mask(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return strings.Repeat("*", len(value))
	}
	local, domain := []rune(value[:at]), value[at:]
	return string(local[0]) + "***" + domain
}

// cardMasker masks card format: 4111 1111 1111 1111 -> **** **** **** 1111
type cardMasker struct{}

// CardMasker returns a masker for card numbers.
// Preserves the last 4 digits and the separators between groups.
func CardMasker() Masker {
	return cardMasker{}
}

func (cardMasker) Mask(value string) string {
	digits := 0
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 4 {
		return strings.Repeat("*", len(value))
	}

	var b strings.Builder
	seen := 0
	for _, r := range value {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen > digits-4 {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
	}
	return b.String()
}

// ipMasker masks IP addresses.
// IPv4: 192.168.1.100 -> 192.168.xxx.xxx
// IPv6: 2001:db8:85a3::8a2e:370:7334 -> 2001:0db8:85a3:0000:xxxx:xxxx:xxxx:xxxx
type ipMasker struct{}

// IPMasker returns a masker for IP addresses.
// IPv4 keeps the first two octets, IPv6 keeps the 64-bit prefix.
func IPMasker() Masker {
	return ipMasker{}
}

func (ipMasker) Mask(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return strings.Repeat("*", len(value))
	}
	if addr.Is4() {
		parts := strings.Split(addr.String(), ".")
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	groups := strings.Split(addr.StringExpanded(), ":")
	return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
}

// uuidMasker masks UUIDs: 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
type uuidMasker struct{}

// UUIDMasker returns a masker for UUIDs.
// Preserves first segment, masks the rest.
func UUIDMasker() Masker {
	return uuidMasker{}
}

func (uuidMasker) Mask(value string) string {
	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		return strings.Repeat("*", len(value))
	}
	return parts[0] + "-****-****-****-************"
}

// urlMasker hides credentials: postgres://app:pw@db:5432/main -> postgres://app:xxxxx@db:5432/main
type urlMasker struct{}

// URLMasker returns a masker for URLs and connection strings. The password
// in the userinfo is hidden; the rest of the URL is kept.
func URLMasker() Masker {
	return urlMasker{}
}

func (urlMasker) Mask(value string) string {
	u, err := url.Parse(value)
	if err != nil {
		return strings.Repeat("*", len(value))
	}
	if u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// maskerFor returns the masker for a mask tag value.
func maskerFor(mt MaskType) (Masker, bool) {
	switch mt {
	case MaskSecret:
		return SecretMasker(), true
	case MaskEmail:
		return EmailMasker(), true
	case MaskCard:
		return CardMasker(), true
	case MaskIP:
		return IPMasker(), true
	case MaskUUID:
		return UUIDMasker(), true
	case MaskURL:
		return URLMasker(), true
	}
	return nil, false
}
