package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/umerontech/riskcheck/internal/identity"
	"github.com/umerontech/riskcheck/internal/model"
	"github.com/umerontech/riskcheck/internal/probe"
)

// criticalSignals force a High risk level regardless of accumulated
// points when they fire at High status. Each is individually decisive:
// confirmed community reports, a recycled ad image, or an advance
// payment request.
var criticalSignals = map[string]bool{
	"Advance payment request":      true,
	"Community reports (approved)": true,
	"User screenshot reuse":        true,
}

// verificationSignals are the probe-backed signals whose Low status
// counts as positive verification. A Low risk level requires at least
// two of them; without that floor, an empty submission would grade as
// safe simply because nothing negative was found.
var verificationSignals = map[string]bool{
	"Internet footprint":       true,
	"Website reachability":     true,
	"Phone footprint":          true,
	"Email footprint":          true,
	"Seller website footprint": true,
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Input is everything a single assessment works from. Community and
// media counters are supplied by the caller so the engine stays free of
// storage concerns.
type Input struct {
	// EntityType is the platform key ("facebook", "whatsapp", "website", ...).
	EntityType string

	// EntityValue is the raw identifier as entered by the user.
	EntityValue string

	// Evidence is the user's answers to the checklist questions.
	Evidence model.Evidence

	// SellerPhone, SellerEmail, and SellerWebsite are optional seller
	// contact details to verify independently of the main identifier.
	SellerPhone   string
	SellerEmail   string
	SellerWebsite string

	// Linked lists cross-platform accounts of the same seller.
	// At most three are checked.
	Linked []model.LinkedAccount

	// Community carries report counters for the entity.
	Community model.CommunityCounts

	// Media carries attachment counters for the entity.
	Media model.MediaCounts
}

// Engine runs assessments. A single Engine is safe for concurrent use.
type Engine struct {
	normalizer *identity.Normalizer
	prober     *probe.Prober
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine using the given normalizer and prober.
func New(normalizer *identity.Normalizer, prober *probe.Prober, opts ...Option) *Engine {
	e := &Engine{
		normalizer: normalizer,
		prober:     prober,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// tally accumulates risk and information points across signals.
// Risk points push the final level up; info points measure how much
// evidence was actually available and become the confidence score.
type tally struct {
	risk int
	info int
}

// Assess runs every signal check for the input and produces a complete
// assessment. Probe failures degrade to Unknown signals; the only error
// conditions are programmatic (nil receiver state).
func (e *Engine) Assess(ctx context.Context, in Input) (*model.Assessment, error) {
	entity := e.normalizer.Normalize(in.EntityType, in.EntityValue)
	a := model.NewAssessment(in.EntityType, entity.Value, entity.Key)
	a.Community = in.Community

	// Base info points cover what the submission itself tells us.
	t := &tally{risk: 0, info: 25}

	e.logger.Debug("starting assessment",
		"entity_type", in.EntityType,
		"entity_key", entity.Key,
	)

	e.scoreIdentifier(a, t, in.EntityType, entity.Value)
	e.scoreFacebookKind(a, t, in.EntityType, entity.Value)
	e.scoreReachability(ctx, a, t, in.EntityType, entity.Value)
	e.scoreFootprint(ctx, a, t, in.EntityType, entity.Value)
	e.scoreSellerPhone(ctx, a, t, in.SellerPhone)
	e.scoreSellerEmail(ctx, a, t, in.SellerEmail)
	e.scoreSellerWebsite(ctx, a, t, in.SellerWebsite)
	e.scoreLinkedAccounts(ctx, a, t, in.Linked)
	e.scoreCommunity(a, t, in.Community)
	e.scoreMedia(a, t, in.Media)
	e.scoreChecklist(a, t, in.Evidence)
	e.scoreStakes(a, t, in.Evidence)

	e.decide(a, t)

	e.logger.Debug("assessment complete",
		"entity_key", entity.Key,
		"risk_level", a.RiskLevel.String(),
		"confidence", a.Confidence,
		"signals", len(a.Signals),
	)

	return a, nil
}

// scoreIdentifier validates the basic format of the main identifier.
func (e *Engine) scoreIdentifier(a *model.Assessment, t *tally, entityType, value string) {
	switch {
	case model.IsURLPlatform(entityType):
		normalized := identity.NormalizeURL(value)
		if hasHost(normalized) {
			a.AddSignal(model.NewSignalMeta("URL validity", model.StatusLow,
				"Looks like a valid URL.", map[string]any{"normalized": normalized}))
			t.info += 5
		} else {
			a.AddSignal(model.NewSignal("URL validity", model.StatusHigh,
				"Not a valid URL format."))
			t.risk += 4
		}
	case model.IsPhonePlatform(entityType):
		pr, err := e.prober.CheckPhone(value)
		if err == nil && pr.Valid {
			a.AddSignal(model.NewSignalMeta("Phone format validity", model.StatusLow,
				fmt.Sprintf("Valid phone number (%s).", pr.Region),
				map[string]any{"e164": pr.E164}))
			t.info += 5
		} else {
			a.AddSignal(model.NewSignal("Phone format validity", model.StatusMedium,
				"Could not validate phone format."))
			t.risk += 2
		}
	default:
		a.AddSignal(model.NewSignal("Identifier", model.StatusUnknown,
			"Unsupported platform type. Best-effort checks only."))
	}
}

// scoreFacebookKind attaches an explanatory signal classifying a
// Facebook URL as a profile, page, or group.
func (e *Engine) scoreFacebookKind(a *model.Assessment, t *tally, entityType, value string) {
	if entityType != model.PlatformFacebook {
		return
	}

	kind := identity.ClassifyFacebookURL(value)
	var note string
	status := model.StatusLow
	switch kind {
	case model.FacebookPage:
		note = "Facebook Page URL."
	case model.FacebookProfile:
		note = "Facebook Profile URL."
	case model.FacebookGroup:
		note = "Facebook Group URL (limited public signals)."
		status = model.StatusUnknown
	default:
		note = "Facebook link."
	}

	a.AddSignal(model.NewSignalMeta("Entity type", status, note,
		map[string]any{"kind": string(kind)}))
	if kind == model.FacebookGroup {
		t.info += 2
	} else {
		t.info += 3
	}
}

// scoreReachability fetches the main identifier when it is an HTTP(S)
// URL, and checks domain age for plain websites.
func (e *Engine) scoreReachability(ctx context.Context, a *model.Assessment, t *tally, entityType, value string) {
	normalized := identity.NormalizeURL(value)
	u, err := url.Parse(normalized)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return
	}

	status, note, finalURL := e.reachStatus(ctx, normalized)
	a.AddSignal(model.NewSignalMeta("Website reachability", status, note,
		map[string]any{"final_url": finalURL}))
	t.risk += status.RiskPoints()
	if status != model.StatusUnknown {
		t.info += 6
	}

	// Domain age only helps for standalone websites; marketplace and
	// social platform domains are old no matter who the seller is.
	if entityType != model.PlatformWebsite {
		return
	}

	host := u.Hostname()
	domain, derr := probe.RegistrableDomain(host)
	if derr != nil {
		domain = host
	}

	age, err := e.prober.DomainAge(ctx, domain)
	if err != nil {
		a.AddSignal(model.NewSignal("Domain age", model.StatusUnknown,
			"Domain age not available."))
		return
	}

	t.info += 6
	switch {
	case age.AgeDays < 30:
		a.AddSignal(model.NewSignal("Domain age", model.StatusHigh,
			fmt.Sprintf("Domain appears newly registered (~%d days).", age.AgeDays)))
		t.risk += 4
	case age.AgeDays < 180:
		a.AddSignal(model.NewSignal("Domain age", model.StatusMedium,
			fmt.Sprintf("Domain is relatively new (~%d days).", age.AgeDays)))
		t.risk += 2
	default:
		a.AddSignal(model.NewSignal("Domain age", model.StatusLow,
			fmt.Sprintf("Domain has existed for ~%d days.", age.AgeDays)))
	}
}

// reachStatus maps a reachability fetch to a verification status.
func (e *Engine) reachStatus(ctx context.Context, target string) (model.Status, string, string) {
	res, err := e.prober.CheckReachability(ctx, target)
	if err != nil {
		return model.StatusUnknown, fmt.Sprintf("Could not fetch URL: %v", err), ""
	}

	switch {
	case res.Reachable() && res.HTTPS:
		return model.StatusLow,
			fmt.Sprintf("URL responded (HTTP %d). HTTPS is present.", res.StatusCode),
			res.FinalURL
	case res.Reachable():
		return model.StatusMedium,
			fmt.Sprintf("URL responded (HTTP %d) but HTTPS is not used.", res.StatusCode),
			res.FinalURL
	default:
		return model.StatusMedium,
			fmt.Sprintf("URL responded with HTTP %d.", res.StatusCode),
			res.FinalURL
	}
}

// scoreFootprint runs the main-entity internet footprint search.
func (e *Engine) scoreFootprint(ctx context.Context, a *model.Assessment, t *tally, entityType, value string) {
	fp := e.prober.Footprint(ctx, value, entityType)
	if !fp.Enabled {
		a.AddSignal(model.NewSignal("Internet footprint", model.StatusUnknown,
			"Footprint search is disabled (missing search API key or engine ID)."))
		return
	}

	t.info += 18

	switch {
	case fp.Total == 0:
		a.AddSignal(model.NewSignal("Internet footprint", model.StatusMedium,
			"No public results found for this identifier (harder to verify)."))
		t.risk += 2
	case fp.NegativeHits > 0:
		a.AddSignal(model.NewSignalMeta("Internet footprint", model.StatusHigh,
			fmt.Sprintf("Public search results include %d potential complaint/scam mention(s).", fp.NegativeHits),
			map[string]any{"results": fp.Total, "top_domains": fp.TopDomains}))
		t.risk += 4
	default:
		a.AddSignal(model.NewSignalMeta("Internet footprint", model.StatusLow,
			fmt.Sprintf("Found %d public result(s). No obvious scam keywords in top results.", fp.Total),
			map[string]any{"results": fp.Total, "top_domains": fp.TopDomains}))
	}
}

// contactFootprint scores a secondary footprint search for a seller
// contact detail (phone, email, seller website).
func contactFootprint(a *model.Assessment, t *tally, name, subject string, fp *probe.FootprintResult) {
	if !fp.Enabled {
		a.AddSignal(model.NewSignal(name, model.StatusUnknown, "Footprint search disabled."))
		return
	}

	t.info += 8

	switch {
	case fp.NegativeHits > 0:
		a.AddSignal(model.NewSignalMeta(name, model.StatusHigh,
			subject+" appears in public results with scam/complaint keywords.",
			map[string]any{"top_domains": fp.TopDomains}))
		t.risk += 4
	case fp.Total == 0:
		a.AddSignal(model.NewSignal(name, model.StatusMedium,
			subject+" has no public footprint (harder to verify)."))
		t.risk += 2
	default:
		a.AddSignal(model.NewSignalMeta(name, model.StatusLow,
			subject+" has public footprint (more verifiable).",
			map[string]any{"top_domains": fp.TopDomains}))
	}
}

// scoreSellerPhone validates the seller's phone and searches its
// footprint when valid.
func (e *Engine) scoreSellerPhone(ctx context.Context, a *model.Assessment, t *tally, phone string) {
	if phone == "" {
		return
	}

	pr, err := e.prober.CheckPhone(phone)
	if err != nil || !pr.Valid {
		a.AddSignal(model.NewSignal("Phone format", model.StatusMedium,
			"Could not validate phone."))
		t.risk += 2
		return
	}

	t.info += 4
	contactFootprint(a, t, "Phone footprint", "Phone", e.prober.Footprint(ctx, pr.E164, ""))
}

// scoreSellerEmail checks MX records for the seller's email domain and
// searches the address's footprint.
func (e *Engine) scoreSellerEmail(ctx context.Context, a *model.Assessment, t *tally, email string) {
	if email == "" {
		return
	}

	entity := e.normalizer.Normalize(model.PlatformEmail, email)

	mx, err := e.prober.CheckEmailMX(ctx, entity.Value)
	switch {
	case err != nil:
		a.AddSignal(model.NewSignal("Email domain (MX)", model.StatusUnknown,
			"MX lookup unavailable."))
	case mx.HasMX:
		hosts := mx.Hosts
		if len(hosts) > 3 {
			hosts = hosts[:3]
		}
		a.AddSignal(model.NewSignal("Email domain (MX)", model.StatusLow,
			fmt.Sprintf("Email domain has MX record(s): %s.", joinHosts(hosts))))
		t.info += 4
	default:
		a.AddSignal(model.NewSignal("Email domain (MX)", model.StatusMedium,
			"No MX records found."))
		t.risk += 2
	}

	contactFootprint(a, t, "Email footprint", "Email", e.prober.Footprint(ctx, entity.Value, ""))
}

// scoreSellerWebsite checks reachability and footprint of the seller's
// standalone website.
func (e *Engine) scoreSellerWebsite(ctx context.Context, a *model.Assessment, t *tally, website string) {
	if website == "" {
		return
	}

	normalized := identity.NormalizeURL(website)
	if !hasHost(normalized) {
		a.AddSignal(model.NewSignal("Seller website", model.StatusMedium,
			"Website is not a valid URL."))
		t.risk += 2
		return
	}

	t.info += 4
	status, note, _ := e.reachStatus(ctx, normalized)
	a.AddSignal(model.NewSignal("Seller website reachability", status, note))
	t.risk += status.RiskPoints()

	contactFootprint(a, t, "Seller website footprint", "Website", e.prober.Footprint(ctx, normalized, ""))
}

// scoreLinkedAccounts searches the footprint of up to three related
// accounts on other platforms.
func (e *Engine) scoreLinkedAccounts(ctx context.Context, a *model.Assessment, t *tally, linked []model.LinkedAccount) {
	if len(linked) == 0 {
		a.AddSignal(model.NewSignal("Cross-platform accounts", model.StatusUnknown,
			"No related accounts provided."))
		return
	}

	t.info += 3
	checked := 0
	negative := 0
	if len(linked) > 3 {
		linked = linked[:3]
	}
	for _, acc := range linked {
		if acc.Value == "" {
			continue
		}
		checked++
		fp := e.prober.Footprint(ctx, acc.Value, acc.Platform)
		if fp.Enabled {
			t.info += 4
			if fp.NegativeHits > 0 {
				negative++
			}
		}
	}

	switch {
	case checked == 0:
		a.AddSignal(model.NewSignal("Cross-platform accounts", model.StatusUnknown,
			"Related accounts list is empty."))
	case negative > 0:
		a.AddSignal(model.NewSignal("Cross-platform accounts", model.StatusHigh,
			fmt.Sprintf("%d related account(s) have complaint/scam keywords in public results.", negative)))
		t.risk += 4
	default:
		a.AddSignal(model.NewSignal("Cross-platform accounts", model.StatusLow,
			fmt.Sprintf("%d related account(s) provided.", checked)))
	}
}

// scoreCommunity scores approved and pending community reports.
// Pending reports warn without being treated as established truth.
func (e *Engine) scoreCommunity(a *model.Assessment, t *tally, c model.CommunityCounts) {
	if c.Approved > 0 {
		a.AddSignal(model.NewSignal("Community reports (approved)", model.StatusHigh,
			fmt.Sprintf("%d approved report(s) exist for this entity.", c.Approved)))
		t.risk += 4
		t.info += 8
	} else {
		a.AddSignal(model.NewSignal("Community reports (approved)", model.StatusLow,
			"No approved community reports found."))
		t.info += 5
	}

	if c.Pending > 0 {
		a.AddSignal(model.NewSignal("Community reports (pending)", model.StatusMedium,
			fmt.Sprintf("%d pending report(s) (not counted as truth).", c.Pending)))
		t.risk += 2
		t.info += 3
	} else {
		a.AddSignal(model.NewSignal("Community reports (pending)", model.StatusLow,
			"No pending community reports."))
		t.info += 2
	}
}

// scoreMedia scores attachment evidence and reuse across entities.
func (e *Engine) scoreMedia(a *model.Assessment, t *tally, m model.MediaCounts) {
	if !m.Provided {
		a.AddSignal(model.NewSignal("User screenshot", model.StatusUnknown,
			"No screenshot provided."))
		return
	}

	t.info += 4
	if m.ReuseCount > 0 {
		a.AddSignal(model.NewSignal("User screenshot reuse", model.StatusHigh,
			fmt.Sprintf("This screenshot has appeared in %d other check(s) (possible reused ad image).", m.ReuseCount)))
		t.risk += 4
	} else {
		a.AddSignal(model.NewSignal("User screenshot provided", model.StatusLow,
			"Screenshot stored for similarity checks (no reuse detected yet)."))
	}
}

// scoreChecklist scores the tri-state evidence questions. Only answered
// questions are scored.
func (e *Engine) scoreChecklist(a *model.Assessment, t *tally, ev model.Evidence) {
	tri := func(name string, answer model.Answer, yesNote, noNote string) {
		if !answer.Answered() {
			return
		}
		t.info += 2
		switch answer {
		case model.AnswerYes:
			a.AddSignal(model.NewSignal(name, model.StatusLow, yesNote))
		case model.AnswerNo:
			a.AddSignal(model.NewSignal(name, model.StatusMedium, noNote))
			t.risk += 2
		default:
			a.AddSignal(model.NewSignal(name, model.StatusUnknown, "Not sure."))
		}
	}

	tri("About section", ev.HasAbout,
		"About section is present.", "About section missing (less transparent).")
	tri("Reviews visible", ev.HasReviews,
		"Reviews are visible.", "Reviews are not visible.")
	tri("Address/location", ev.HasAddress,
		"Address/location is provided.", "No location provided.")
	tri("Phone or email on page", ev.HasContactInfo,
		"Contact info is shown.", "No contact info shown.")
	tri("Posts history", ev.HasOldPosts,
		"Account has older posts (history exists).", "No old posts / very new account.")
	tri("Recent activity", ev.HasRecentPosts,
		"Recent activity exists.", "No recent activity.")

	if ev.AskedAdvancePayment == model.AnswerYes {
		a.AddSignal(model.NewSignal("Advance payment request", model.StatusHigh,
			"Seller asked for advance payment (common scam indicator)."))
		t.risk += 6
		t.info += 2
	}
}

// scoreStakes scores the transaction amount parsed from the free-text
// price fields.
func (e *Engine) scoreStakes(a *model.Assessment, t *tally, ev model.Evidence) {
	text := ev.StakeText()
	digits := nonDigits.ReplaceAllString(text, "")
	amount, err := strconv.Atoi(digits)
	if text == "" || digits == "" || err != nil {
		a.AddSignal(model.NewSignal("Transaction stakes", model.StatusUnknown,
			"No stake signal provided."))
		return
	}

	t.info += 2
	switch {
	case amount >= 100000:
		a.AddSignal(model.NewSignal("Transaction stakes", model.StatusMedium,
			"High amount. Be extra careful (prefer escrow/COD)."))
		t.risk += 2
	case amount >= 20000:
		a.AddSignal(model.NewSignal("Transaction stakes", model.StatusUnknown,
			"Medium amount. Risk depends on payment method."))
	default:
		a.AddSignal(model.NewSignal("Transaction stakes", model.StatusLow,
			"Low amount reduces impact but does not confirm safety."))
	}
}

// decide maps the accumulated points to the final risk level, grade,
// confidence, and rationale.
func (e *Engine) decide(a *model.Assessment, t *tally) {
	critical := false
	for _, s := range a.Signals {
		if s.Status == model.StatusHigh && criticalSignals[s.Name] {
			critical = true
			break
		}
	}

	switch {
	case critical || t.risk >= 10:
		a.RiskLevel = model.StatusHigh
	case t.risk >= 5:
		a.RiskLevel = model.StatusMedium
	default:
		verification := 0
		for _, s := range a.Signals {
			if s.Status == model.StatusLow && verificationSignals[s.Name] {
				verification++
			}
		}
		if t.risk <= 1 && verification >= 2 {
			a.RiskLevel = model.StatusLow
		} else {
			a.RiskLevel = model.StatusUnknown
		}
	}

	a.Grade = a.RiskLevel.Grade()
	a.Confidence = clamp(t.info, 10, 95)
	a.Rationale = e.rationale(a.RiskLevel)
}

// rationale returns the advisory text for a risk level. Low and Unknown
// share the unverified wording: a Low level means nothing negative was
// found, not that the counterparty was proven safe.
func (e *Engine) rationale(level model.Status) string {
	var text string
	switch level {
	case model.StatusHigh:
		text = "High-risk signals were detected. Avoid advance payments. Prefer Cash on Delivery (COD), " +
			"platform-protected checkout, or escrow. Ask for strong proof (invoice, live video with today's date, " +
			"verified business address) and verify contacts across platforms."
	case model.StatusMedium:
		text = "Warning-level signals were found. This is not a verdict, but risk is higher than normal. " +
			"Prefer COD/escrow, verify the seller's identity, and do not send advance payments."
	default:
		text = "Unverified. Risk level is Unknown based on available signals. We do not label anyone as a " +
			"scammer; we assess risk and uncertainty. Prefer COD/escrow, ask for proof (invoice, live video), " +
			"and avoid advance payment."
	}

	if !e.prober.SearchEnabled() {
		text += " (Tip: enable internet footprint search by configuring the search API key and engine ID.)"
	}

	return text
}

func hasHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Host != ""
}

func joinHosts(hosts []string) string {
	return strings.Join(hosts, ", ")
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
