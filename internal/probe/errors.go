package probe

import "errors"

var (
	// ErrEmptyURL is returned when a reachability check receives an empty URL.
	ErrEmptyURL = errors.New("probe: empty url")

	// ErrUnsupportedScheme is returned when a URL uses a scheme other than
	// http or https.
	ErrUnsupportedScheme = errors.New("probe: unsupported url scheme")

	// ErrBlockedHost is returned when a URL points at a private, loopback,
	// or otherwise non-public host.
	ErrBlockedHost = errors.New("probe: blocked host")

	// ErrInvalidEmail is returned when an email address has no domain part.
	ErrInvalidEmail = errors.New("probe: invalid email format")

	// ErrEmptyPhone is returned when a phone check receives an empty value.
	ErrEmptyPhone = errors.New("probe: empty phone number")

	// ErrInvalidDomain is returned when a domain age lookup receives a
	// value that cannot be a registrable domain.
	ErrInvalidDomain = errors.New("probe: invalid domain")

	// ErrNoRegistrationEvent is returned when an RDAP response carries no
	// recognizable registration event.
	ErrNoRegistrationEvent = errors.New("probe: no registration event in RDAP response")
)
