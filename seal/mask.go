package seal

import (
	"net/netip"
	"strconv"
	"strings"
	"unicode"

	"github.com/zoobzio/serde"
)

// Masker hides part of a string while keeping it recognizable.
type Masker interface {
	Mask(value string) string
}

// MaskFunc adapts a function to a Masker.
type MaskFunc func(string) string

// Mask calls f(value).
func (f MaskFunc) Mask(value string) string { return f(value) }

// Masked returns a serializer writing m.Mask(value). Deserialize returns the
// stored text as-is.
func Masked(m Masker) serde.Serializer[string] {
	return serde.Transform(serde.String,
		func(value string) serde.Result[string] { return serde.Ok(m.Mask(value)) },
		serde.Ok[string],
	)
}

// Redacted returns a serializer that always writes replacement.
func Redacted(replacement string) serde.Serializer[string] {
	return Masked(MaskFunc(func(string) string { return replacement }))
}

func stars(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// EmailMasker keeps the first character of the local part and the domain:
// alice@example.com becomes a***@example.com.
func EmailMasker() Masker {
	return MaskFunc(func(value string) string {
		at := strings.LastIndex(value, "@")
		if at < 1 {
			return stars(value)
		}
		return value[:1] + "***" + value[at:]
	})
}

// SSNMasker keeps the last four digits: 123-45-6789 becomes ***-**-6789.
func SSNMasker() Masker {
	return MaskFunc(func(value string) string {
		d := digits(value)
		if len(d) < 4 {
			return stars(value)
		}
		return "***-**-" + d[len(d)-4:]
	})
}

// CardMasker keeps the last four digits and the grouping separator:
// 4111 1111 1111 1111 becomes **** **** **** 1111.
func CardMasker() Masker {
	return MaskFunc(func(value string) string {
		d := digits(value)
		if len(d) < 4 {
			return stars(value)
		}
		last4 := d[len(d)-4:]
		for _, sep := range []string{" ", "-"} {
			if strings.Contains(value, sep) {
				groups := make([]string, (len(d)-4+3)/4, (len(d)-4+3)/4+1)
				for i := range groups {
					groups[i] = "****"
				}
				return strings.Join(append(groups, last4), sep)
			}
		}
		return strings.Repeat("*", len(d)-4) + last4
	})
}

// IPMasker keeps the network half: 192.168.1.100 becomes 192.168.xxx.xxx and
// an IPv6 address keeps its first four groups.
func IPMasker() Masker {
	return MaskFunc(func(value string) string {
		addr, err := netip.ParseAddr(value)
		switch {
		case err != nil:
			return stars(value)
		case addr.Is4():
			b := addr.As4()
			return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + ".xxx.xxx"
		}
		groups := strings.Split(addr.StringExpanded(), ":")
		return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
	})
}

// NameMasker keeps the first letter of each word: John Smith becomes J*** S****.
func NameMasker() Masker {
	return MaskFunc(func(value string) string {
		words := strings.Fields(value)
		for i, word := range words {
			r := []rune(word)
			words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
		}
		return strings.Join(words, " ")
	})
}
