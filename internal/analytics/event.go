package analytics

import (
	"strings"
	"time"

	"github.com/serroba/linkpulse/internal/enrich"
)

// TopicClickRaised is the topic carrying raw visits from the redirect path
// to the click-recording pipeline.
const TopicClickRaised = "link.click.raised"

// DirectReferrer is recorded when a visit carries no referrer.
const DirectReferrer = "direct"

// RetentionWindow bounds how long click events are kept before they become
// eligible for purge.
const RetentionWindow = 90 * 24 * time.Hour

// ClickRaised is the wire event emitted once per redirect attempt.
type ClickRaised struct {
	LinkID    string    `json:"linkId"`
	Code      string    `json:"code"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
	At        time.Time `json:"at"`
}

// ClickEvent is the persisted, enriched record of a single redirect.
// Immutable once written.
type ClickEvent struct {
	ID        string
	LinkID    string
	Code      string
	Timestamp time.Time
	Visitor   Visitor
	Referrer  string
	IsBot     bool
}

// Visitor holds the best-effort attributes of the visit.
type Visitor struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Device    string
	Country   string
	City      string
}

// botSignatures are matched case-insensitively against the user agent.
var botSignatures = []string{"bot", "crawler", "spider", "crawling"}

// IsBot classifies a user agent as automated traffic.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)

	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}

	return false
}

func newVisitor(ip, userAgent string, derived enrich.Visitor) Visitor {
	return Visitor{
		IP:        ip,
		UserAgent: userAgent,
		Browser:   derived.Browser,
		OS:        derived.OS,
		Device:    derived.Device,
		Country:   derived.Country,
		City:      derived.City,
	}
}
