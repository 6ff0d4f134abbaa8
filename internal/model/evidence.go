package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is a tri-state user answer to an evidence question, with a fourth
// "not asked" state. The distinction between Unanswered and Unsure matters:
// an absent field is skipped entirely (no signal, no points) while an
// explicit "unsure" still records an Unknown signal and an info point.
//
// Design decision: A dedicated type instead of *bool keeps the checklist
// logic exhaustive at every call site and survives JSON round-trips where
// the original data used true/false/"unsure"/absent.
type Answer int

const (
	// AnswerUnanswered means the question was not asked. Zero value.
	AnswerUnanswered Answer = iota

	// AnswerYes means the user confirmed the property holds.
	AnswerYes

	// AnswerNo means the user confirmed the property does not hold.
	AnswerNo

	// AnswerUnsure means the user was asked but could not tell.
	AnswerUnsure
)

// Answered reports whether the question was asked at all.
func (a Answer) Answered() bool { return a != AnswerUnanswered }

// String returns a display form of the answer.
func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "yes"
	case AnswerNo:
		return "no"
	case AnswerUnsure:
		return "unsure"
	default:
		return ""
	}
}

// MarshalJSON serializes yes/no as booleans and unsure as a string,
// matching the submission payload format. Unanswered serializes as null;
// combined with omitempty-style handling in Evidence this keeps stored
// evidence sparse.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a {
	case AnswerYes:
		return []byte("true"), nil
	case AnswerNo:
		return []byte("false"), nil
	case AnswerUnsure:
		return []byte(`"unsure"`), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false, null, and any string (treated as
// "unsure") so that sloppy client payloads still parse.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*a = AnswerYes
	case bytes.Equal(data, []byte("false")):
		*a = AnswerNo
	case bytes.Equal(data, []byte("null")):
		*a = AnswerUnanswered
	case len(data) > 0 && data[0] == '"':
		*a = AnswerUnsure
	default:
		return fmt.Errorf("invalid evidence answer: %s", string(data))
	}
	return nil
}

// Evidence holds the user-supplied context about the counterparty.
// Every field is optional; the engine only scores what was answered.
type Evidence struct {
	// HasAbout: the profile/page has an about section.
	HasAbout Answer `json:"has_about,omitempty"`

	// HasReviews: reviews are publicly visible.
	HasReviews Answer `json:"has_reviews,omitempty"`

	// HasAddress: an address or location is provided.
	HasAddress Answer `json:"has_address,omitempty"`

	// HasContactInfo: a phone number or email is shown on the page.
	HasContactInfo Answer `json:"has_phone_or_email,omitempty"`

	// HasOldPosts: the account has posts older than six months.
	HasOldPosts Answer `json:"has_posts_older_than_6_months,omitempty"`

	// HasRecentPosts: the account has activity within the last 30 days.
	HasRecentPosts Answer `json:"has_recent_posts_last_30_days,omitempty"`

	// AskedAdvancePayment: the seller asked for payment before delivery.
	// A yes here is a near-definitive scam indicator and forces a
	// High-risk signal with extra weight.
	AskedAdvancePayment Answer `json:"asked_advance_payment,omitempty"`

	// Intent is the buyer's free-form description of the transaction.
	Intent string `json:"intent,omitempty"`

	// Price is the quoted price as free text. Digits are extracted for
	// the transaction-stakes signal.
	Price string `json:"price,omitempty"`

	// PriceRange is an alternative free-text price field; used when
	// Price is empty.
	PriceRange string `json:"price_range,omitempty"`
}

// StakeText returns the free-text price field to parse for transaction
// stakes, preferring Price over PriceRange.
func (e Evidence) StakeText() string {
	if e.Price != "" {
		return e.Price
	}
	return e.PriceRange
}

// MarshalJSON is implemented on Answer; Evidence itself round-trips with
// the default encoder. The explicit var keeps the compiler honest about
// the interface contracts.
var (
	_ json.Marshaler   = AnswerYes
	_ json.Unmarshaler = (*Answer)(nil)
)

// LinkedAccount is a cross-platform account the seller also uses.
type LinkedAccount struct {
	// Platform is the platform key of the linked account (may be empty).
	Platform string `json:"platform,omitempty"`

	// Value is the linked identifier (URL, handle, phone).
	Value string `json:"value"`
}

// CommunityCounts carries community-report counters for the entity.
// Approved reports are treated as strong evidence; pending ones are a
// warning only and explicitly not counted as proven truth.
type CommunityCounts struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

// MediaCounts carries attachment context for the entity.
type MediaCounts struct {
	// Provided is true when the submission included user media.
	Provided bool `json:"provided"`

	// ReuseCount is how many other entity keys share the submitted
	// media content hashes. A non-zero count suggests a recycled ad image.
	ReuseCount int `json:"reuse_count"`
}
