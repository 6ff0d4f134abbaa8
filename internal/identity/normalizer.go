package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/umerontech/riskcheck/internal/model"
)

// DefaultRegion is the phone-number region assumed when a number carries
// no country code. The service primarily targets Pakistani marketplaces.
const DefaultRegion = "PK"

var (
	// schemePattern matches values that already carry an http(s) scheme.
	schemePattern = regexp.MustCompile(`(?i)^https?://`)

	// phoneNoise matches the separators people type into phone numbers.
	// The leading + is deliberately preserved.
	phoneNoise = regexp.MustCompile(`[\s\-()]+`)

	// facebookProfileID extracts the numeric id parameter from a
	// profile.php query string. The (?:^|&) guard prevents matching
	// parameters that merely end in "id" (e.g. fbid).
	facebookProfileID = regexp.MustCompile(`(?:^|&)id=(\d+)`)
)

// Entity is a canonicalized identity.
type Entity struct {
	// Value is the canonical displayable form (lower-cased URL, stripped
	// phone digits, lower-cased email).
	Value string

	// Key is the deduplication key. Two semantically equal raw values
	// (same phone in different formats, same URL with or without scheme)
	// always produce the same key.
	Key string
}

// Normalizer canonicalizes entity values per platform type.
//
// Design decision: A struct rather than package functions because the
// default phone region is configuration, and injecting it keeps the
// normalizer deterministic under test.
type Normalizer struct {
	// region is the default phone region for numbers without country code.
	region string
}

// NewNormalizer creates a Normalizer with the given default phone region.
// An empty region falls back to DefaultRegion.
func NewNormalizer(region string) *Normalizer {
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Normalize canonicalizes a raw entity value according to its platform
// type and derives the deduplication key. It never fails; unparseable
// input falls back to a content-hash key.
func (n *Normalizer) Normalize(entityType, raw string) Entity {
	et := strings.ToLower(strings.TrimSpace(entityType))
	value := strings.TrimSpace(raw)

	switch {
	case model.IsPhonePlatform(et):
		return n.normalizePhone(value)
	case et == model.PlatformEmail:
		em := strings.ToLower(value)
		return Entity{Value: em, Key: em}
	default:
		return n.normalizeURLish(value)
	}
}

// normalizePhone strips separator noise and keys on the E.164 form when
// the number validates, otherwise on the stripped digits.
func (n *Normalizer) normalizePhone(value string) Entity {
	stripped := phoneNoise.ReplaceAllString(value, "")
	key := stripped

	if num, err := phonenumbers.Parse(stripped, n.region); err == nil {
		if phonenumbers.IsValidNumber(num) {
			if e164 := phonenumbers.Format(num, phonenumbers.E164); e164 != "" {
				key = e164
			}
		}
	}

	return Entity{Value: stripped, Key: key}
}

// normalizeURLish treats the value as a URL, deriving the key from
// host+path. Values where no host can be parsed fall back to a hash key.
func (n *Normalizer) normalizeURLish(value string) Entity {
	normalized := NormalizeURL(value)

	if u, err := url.Parse(normalized); err == nil && u.Host != "" {
		key := strings.TrimRight(strings.ToLower(u.Host+u.Path), "/")

		// The same numeric Facebook profile appears under many
		// profile.php URLs with different query-string noise; key on
		// the id so they all correlate.
		if strings.Contains(strings.ToLower(u.Host), "facebook.com") &&
			strings.HasSuffix(strings.ToLower(u.Path), "/profile.php") {
			if m := facebookProfileID.FindStringSubmatch(u.RawQuery); m != nil {
				key = "facebook_profile_id:" + m[1]
			}
		}

		return Entity{Value: normalized, Key: key}
	}

	// Not a URL, not a phone, not an email: hash the raw content so the
	// value still gets a stable key for report correlation.
	sum := sha256.Sum256([]byte(value))
	return Entity{Value: value, Key: hex.EncodeToString(sum[:])[:24]}
}

// NormalizeURL canonicalizes a URL-like string: prepends https:// when the
// value looks like a bare host, lower-cases scheme and host, and strips
// the trailing slash from the path. The query string is preserved as-is.
// Values that do not parse as URLs are returned unchanged.
func NormalizeURL(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}

	// Bare "example.com/shop" style values get a scheme so they parse.
	if !schemePattern.MatchString(s) && strings.ContainsAny(s, "./") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s
	}

	out := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}
