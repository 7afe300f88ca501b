// Package enrich derives best-effort visitor attributes from the raw
// user-agent string and client IP. Every field falls back to "Unknown";
// enrichment never fails.
package enrich

import (
	"net/netip"
	"strings"
)

// Unknown is the fallback for every attribute that cannot be derived.
const Unknown = "Unknown"

// Visitor holds the derived attributes of a single visit.
type Visitor struct {
	Browser string
	OS      string
	Device  string
	Country string
	City    string
}

// GeoResolver resolves an IP address to a coarse location. Implementations
// must be safe for concurrent use.
type GeoResolver interface {
	Lookup(ip string) (country, city string, ok bool)
}

// NoGeo is a GeoResolver that never resolves. Used when no geo database is
// configured.
type NoGeo struct{}

func (NoGeo) Lookup(string) (string, string, bool) { return "", "", false }

// Enricher derives visitor attributes.
type Enricher struct {
	geo GeoResolver
}

// New creates an Enricher. A nil geo resolver disables geolocation.
func New(geo GeoResolver) *Enricher {
	if geo == nil {
		geo = NoGeo{}
	}

	return &Enricher{geo: geo}
}

// Visit derives browser, OS, device, and location from a raw visit.
func (e *Enricher) Visit(userAgent, ip string) Visitor {
	v := Visitor{
		Browser: parseBrowser(userAgent),
		OS:      parseOS(userAgent),
		Device:  parseDevice(userAgent),
		Country: Unknown,
		City:    Unknown,
	}

	// Loopback and private addresses never reach geo lookup.
	if ip == "" || isPrivate(ip) {
		return v
	}

	if country, city, ok := e.geo.Lookup(ip); ok {
		if country != "" {
			v.Country = country
		}

		if city != "" {
			v.City = city
		}
	}

	return v
}

// browserSignatures is ordered: more specific agents first, since Chrome and
// Safari tokens appear in many other agents.
var browserSignatures = []struct{ token, name string }{
	{"edg/", "Edge"},
	{"edge", "Edge"},
	{"opr/", "Opera"},
	{"opera", "Opera"},
	{"firefox", "Firefox"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
}

func parseBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, sig := range browserSignatures {
		if strings.Contains(ua, sig.token) {
			return sig.name
		}
	}

	return Unknown
}

var osSignatures = []struct{ token, name string }{
	{"windows", "Windows"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"mac os", "macOS"},
	{"macintosh", "macOS"},
	{"linux", "Linux"},
}

func parseOS(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, sig := range osSignatures {
		if strings.Contains(ua, sig.token) {
			return sig.name
		}
	}

	return Unknown
}

func parseDevice(userAgent string) string {
	if userAgent == "" {
		return Unknown
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		return "mobile"
	default:
		return "desktop"
	}
}

func isPrivate(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimPrefix(ip, "::ffff:"))
	if err != nil {
		// Unparseable addresses are treated as private to keep them away
		// from geo lookups.
		return true
	}

	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
