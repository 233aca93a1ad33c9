// Package domainname reduces URLs and hostnames to a registrable domain (eTLD+1).
package domainname

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var schemePrefix = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)

// Normalize extracts the registrable domain from a URL or bare hostname.
// It never fails: input that cannot be parsed comes back lower-cased and
// trimmed, so callers must tolerate values that are not hostnames.
func Normalize(input string) string {
	raw := strings.ToLower(strings.TrimSpace(input))
	if raw == "" {
		return raw
	}
	if ip := net.ParseIP(strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")); ip != nil {
		return formatIP(ip)
	}
	withScheme := raw
	if !schemePrefix.MatchString(raw) {
		withScheme = "https://" + raw
	}
	u, err := url.Parse(withScheme)
	if err != nil {
		return raw
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return raw
	}
	host = strings.TrimPrefix(host, "www.")
	if ip := net.ParseIP(host); ip != nil {
		return formatIP(ip)
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return Registrable(host)
}

// formatIP keeps IPv6 literals bracketed so the result parses as a host again.
func formatIP(ip net.IP) string {
	if ip.To4() != nil {
		return ip.String()
	}
	return "[" + ip.String() + "]"
}

// Registrable returns eTLD+1 for host using the public suffix list, and the
// last two labels when the list cannot answer (single labels, bare suffixes).
func Registrable(host string) string {
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return lastTwoLabels(host)
}

func lastTwoLabels(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// Base returns the first label of a registrable domain ("monstercasino" for
// "monstercasino.co.uk").
func Base(domain string) string {
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		return domain[:i]
	}
	return domain
}
