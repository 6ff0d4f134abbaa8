package model

import "strings"

// Platform identifies where the assessed entity lives. It is an open
// string enum: unknown platforms are accepted and fall through to
// URL-like handling so that new marketplaces work without code changes.
type Platform = string

// Well-known platform keys.
const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformTelegram  Platform = "telegram"
	PlatformEmail     Platform = "email"
	PlatformWebsite   Platform = "website"
)

// urlPlatforms lists the platform keys whose entity value is a URL.
// Marketplace platforms are included so that listings and shop links
// get the URL-validity and reachability checks.
var urlPlatforms = map[string]bool{
	PlatformFacebook:  true,
	PlatformInstagram: true,
	PlatformWebsite:   true,
	"olx":             true,
	"daraz":           true,
	"amazon":          true,
	"ebay":            true,
	"aliexpress":      true,
	"pakwheels":       true,
	"autotrader":      true,
	"craigslist":      true,
	"gumtree":         true,
	"carousell":       true,
}

// IsURLPlatform reports whether entities of this platform are URLs.
func IsURLPlatform(p Platform) bool {
	return urlPlatforms[strings.ToLower(strings.TrimSpace(p))]
}

// IsPhonePlatform reports whether entities of this platform are phone
// numbers (messaging apps addressed by number).
func IsPhonePlatform(p Platform) bool {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PlatformWhatsApp, PlatformTelegram:
		return true
	default:
		return false
	}
}

// FacebookKind classifies a Facebook URL into the entity kind it points at.
// The classification only attaches an explanatory signal; it does not
// change scoring weights materially.
type FacebookKind string

const (
	// FacebookProfile is a personal profile (profile.php?id=... URLs).
	FacebookProfile FacebookKind = "profile"

	// FacebookPage is a business or community page. Pages are the default
	// classification because most commerce links point at pages.
	FacebookPage FacebookKind = "page"

	// FacebookGroup is a group; groups expose very limited public signals.
	FacebookGroup FacebookKind = "group"

	// FacebookUnknown means the URL is not a Facebook URL at all.
	FacebookUnknown FacebookKind = "unknown"
)
