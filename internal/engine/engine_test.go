package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/umerontech/riskcheck/internal/identity"
	"github.com/umerontech/riskcheck/internal/model"
	"github.com/umerontech/riskcheck/internal/probe"
)

// newOfflineEngine builds an engine whose probes cannot reach anything:
// search is unconfigured and the HTTP timeout is too short for any real
// connection, so footprint and reachability signals degrade to Unknown
// deterministically.
func newOfflineEngine() *Engine {
	p := probe.NewProber(probe.WithTimeout(time.Millisecond))
	return New(identity.NewNormalizer(identity.DefaultRegion), p)
}

// newStubEngine builds an engine backed by a local server that answers
// search, RDAP, and page requests.
func newStubEngine(t *testing.T, searchBody string) (*Engine, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/customsearch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchBody)
	})
	mux.HandleFunc("/domain/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events": [{"eventAction": "registration", "eventDate": "2018-03-01T00:00:00Z"}]}`)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>shop</html>")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p := probe.NewProber(
		probe.WithSearchCredentials("test-key", "test-cx"),
		probe.WithSearchEndpoint(server.URL+"/customsearch"),
		probe.WithRDAPEndpoint(server.URL),
		probe.WithBlockPrivateHosts(false),
	)
	return New(identity.NewNormalizer(identity.DefaultRegion), p), server
}

const cleanSearchBody = `{
	"searchInformation": {"totalResults": "12"},
	"items": [
		{"title": "Seller page", "link": "https://market.example/a", "snippet": "listings"},
		{"title": "Reviews", "link": "https://reviews.example/b", "snippet": "five stars"}
	]
}`

const negativeSearchBody = `{
	"searchInformation": {"totalResults": "5"},
	"items": [
		{"title": "SCAM warning", "link": "https://complaints.example/x", "snippet": "advance payment fraud"}
	]
}`

func findSignal(t *testing.T, a *model.Assessment, name string) model.Signal {
	t.Helper()
	s, ok := a.Signal(name)
	if !ok {
		names := make([]string, 0, len(a.Signals))
		for _, sig := range a.Signals {
			names = append(names, sig.Name)
		}
		t.Fatalf("signal %q not found in %v", name, names)
	}
	return s
}

func TestAssess_advancePaymentForcesHigh(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
		Evidence:    model.Evidence{AskedAdvancePayment: model.AnswerYes},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.RiskLevel != model.StatusHigh {
		t.Errorf("risk level = %v, want High", a.RiskLevel)
	}
	if a.Grade != "High Risk" {
		t.Errorf("grade = %q, want High Risk", a.Grade)
	}
	s := findSignal(t, a, "Advance payment request")
	if s.Status != model.StatusHigh {
		t.Errorf("advance payment signal status = %v, want High", s.Status)
	}
}

func TestAssess_approvedCommunityReportsForceHigh(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
		Community:   model.CommunityCounts{Approved: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.RiskLevel != model.StatusHigh || a.Grade != "High Risk" {
		t.Errorf("risk/grade = %v/%q, want High/High Risk", a.RiskLevel, a.Grade)
	}
	s := findSignal(t, a, "Community reports (approved)")
	if !strings.Contains(s.Note, "2 approved report(s)") {
		t.Errorf("note = %q", s.Note)
	}
}

func TestAssess_screenshotReuseForcesHigh(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
		Media:       model.MediaCounts{Provided: true, ReuseCount: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.RiskLevel != model.StatusHigh {
		t.Errorf("risk level = %v, want High", a.RiskLevel)
	}
	findSignal(t, a, "User screenshot reuse")
}

func TestAssess_unverifiedByDefault(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing negative, but nothing verified either.
	if a.RiskLevel != model.StatusUnknown {
		t.Errorf("risk level = %v, want Unknown", a.RiskLevel)
	}
	if a.Grade != "Unverified" {
		t.Errorf("grade = %q, want Unverified", a.Grade)
	}
	if !strings.Contains(a.Rationale, "We do not label anyone as a scammer") {
		t.Errorf("rationale = %q", a.Rationale)
	}
	// Search is unconfigured, so the rationale carries the setup tip.
	if !strings.Contains(a.Rationale, "Tip:") {
		t.Errorf("rationale should mention the footprint setup tip: %q", a.Rationale)
	}
}

func TestAssess_footprintDisabledSignal(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := findSignal(t, a, "Internet footprint")
	if s.Status != model.StatusUnknown {
		t.Errorf("footprint status = %v, want Unknown when disabled", s.Status)
	}
}

func TestAssess_verifiedSellerGradesGood(t *testing.T) {
	t.Parallel()

	e, _ := newStubEngine(t, cleanSearchBody)
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "0300 1234567",
		SellerPhone: "+923001234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := findSignal(t, a, "Internet footprint"); s.Status != model.StatusLow {
		t.Errorf("internet footprint = %v, want Low", s.Status)
	}
	if s := findSignal(t, a, "Phone footprint"); s.Status != model.StatusLow {
		t.Errorf("phone footprint = %v, want Low", s.Status)
	}
	if a.RiskLevel != model.StatusLow {
		t.Errorf("risk level = %v, want Low with two verifications and no risk", a.RiskLevel)
	}
	if a.Grade != "Good" {
		t.Errorf("grade = %q, want Good", a.Grade)
	}
	if strings.Contains(a.Rationale, "Tip:") {
		t.Errorf("rationale should not carry the setup tip when search is configured: %q", a.Rationale)
	}
}

func TestAssess_negativeFootprintRaisesRisk(t *testing.T) {
	t.Parallel()

	e, _ := newStubEngine(t, negativeSearchBody)
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := findSignal(t, a, "Internet footprint")
	if s.Status != model.StatusHigh {
		t.Errorf("footprint status = %v, want High for negative mentions", s.Status)
	}
	if !strings.Contains(s.Note, "1 potential complaint/scam mention(s)") {
		t.Errorf("note = %q", s.Note)
	}
}

func TestAssess_websiteEndToEnd(t *testing.T) {
	t.Parallel()

	e, server := newStubEngine(t, cleanSearchBody)
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "website",
		EntityValue: server.URL + "/ok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := findSignal(t, a, "URL validity"); s.Status != model.StatusLow {
		t.Errorf("url validity = %v, want Low", s.Status)
	}
	// Local test server speaks plain HTTP, so reachability warns.
	if s := findSignal(t, a, "Website reachability"); s.Status != model.StatusMedium {
		t.Errorf("reachability = %v, want Medium without HTTPS", s.Status)
	}
	if s := findSignal(t, a, "Domain age"); s.Status != model.StatusLow {
		t.Errorf("domain age = %v, want Low for a 2018 registration", s.Status)
	}
	if a.EntityType != "website" {
		t.Errorf("entity type = %q", a.EntityType)
	}
	if a.EntityKey == "" {
		t.Error("entity key must be derived")
	}
}

func TestAssess_invalidURLIdentifier(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "website",
		EntityValue: "not a url at all",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := findSignal(t, a, "URL validity")
	if s.Status != model.StatusHigh {
		t.Errorf("url validity = %v, want High for garbage input", s.Status)
	}
}

func TestAssess_unsupportedPlatform(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "carrier-pigeon",
		EntityValue: "coop 7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := findSignal(t, a, "Identifier")
	if s.Status != model.StatusUnknown {
		t.Errorf("identifier = %v, want Unknown for unsupported platform", s.Status)
	}
}

func TestAssess_confidenceBounds(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()

	inputs := []Input{
		{EntityType: "whatsapp", EntityValue: "+923001234567"},
		{EntityType: "whatsapp", EntityValue: "+923001234567",
			Evidence: model.Evidence{
				HasAbout: model.AnswerYes, HasReviews: model.AnswerYes,
				HasAddress: model.AnswerYes, HasContactInfo: model.AnswerYes,
				HasOldPosts: model.AnswerYes, HasRecentPosts: model.AnswerYes,
				Price: "500",
			},
			Media:     model.MediaCounts{Provided: true},
			Community: model.CommunityCounts{Approved: 1, Pending: 1},
		},
	}

	for i, in := range inputs {
		a, err := e.Assess(context.Background(), in)
		if err != nil {
			t.Fatalf("input %d: unexpected error: %v", i, err)
		}
		if a.Confidence < 10 || a.Confidence > 95 {
			t.Errorf("input %d: confidence = %d, want within [10, 95]", i, a.Confidence)
		}
	}
}

func TestAssess_checklist(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
		Evidence: model.Evidence{
			HasAbout:   model.AnswerYes,
			HasReviews: model.AnswerNo,
			HasAddress: model.AnswerUnsure,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := findSignal(t, a, "About section"); s.Status != model.StatusLow {
		t.Errorf("about = %v, want Low", s.Status)
	}
	if s := findSignal(t, a, "Reviews visible"); s.Status != model.StatusMedium {
		t.Errorf("reviews = %v, want Medium", s.Status)
	}
	s := findSignal(t, a, "Address/location")
	if s.Status != model.StatusUnknown || s.Note != "Not sure." {
		t.Errorf("address = %v/%q, want Unknown/Not sure.", s.Status, s.Note)
	}

	// Unanswered questions leave no signal at all.
	if _, ok := a.Signal("Posts history"); ok {
		t.Error("unanswered question must not produce a signal")
	}
}

func TestAssess_transactionStakes(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()

	tests := []struct {
		name       string
		price      string
		wantStatus model.Status
	}{
		{name: "high amount", price: "PKR 150,000", wantStatus: model.StatusMedium},
		{name: "medium amount", price: "50000", wantStatus: model.StatusUnknown},
		{name: "low amount", price: "Rs 5,000", wantStatus: model.StatusLow},
		{name: "no amount", price: "", wantStatus: model.StatusUnknown},
		{name: "no digits", price: "negotiable", wantStatus: model.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := e.Assess(context.Background(), Input{
				EntityType:  "whatsapp",
				EntityValue: "+923001234567",
				Evidence:    model.Evidence{Price: tt.price},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s := findSignal(t, a, "Transaction stakes")
			if s.Status != tt.wantStatus {
				t.Errorf("stakes status = %v, want %v", s.Status, tt.wantStatus)
			}
		})
	}
}

func TestAssess_pendingReportsAreWarningOnly(t *testing.T) {
	t.Parallel()

	e := newOfflineEngine()
	a, err := e.Assess(context.Background(), Input{
		EntityType:  "whatsapp",
		EntityValue: "+923001234567",
		Community:   model.CommunityCounts{Pending: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := findSignal(t, a, "Community reports (pending)")
	if s.Status != model.StatusMedium {
		t.Errorf("pending reports = %v, want Medium", s.Status)
	}
	// Pending alone must never force High.
	if a.RiskLevel == model.StatusHigh {
		t.Error("pending reports alone must not force a High risk level")
	}
}

func TestAssess_linkedAccounts(t *testing.T) {
	t.Parallel()

	t.Run("none provided", func(t *testing.T) {
		t.Parallel()

		e := newOfflineEngine()
		a, err := e.Assess(context.Background(), Input{
			EntityType:  "whatsapp",
			EntityValue: "+923001234567",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := findSignal(t, a, "Cross-platform accounts")
		if s.Status != model.StatusUnknown {
			t.Errorf("linked accounts = %v, want Unknown", s.Status)
		}
	})

	t.Run("clean accounts", func(t *testing.T) {
		t.Parallel()

		e, _ := newStubEngine(t, cleanSearchBody)
		a, err := e.Assess(context.Background(), Input{
			EntityType:  "whatsapp",
			EntityValue: "+923001234567",
			Linked: []model.LinkedAccount{
				{Platform: "facebook", Value: "https://facebook.com/some.seller"},
				{Platform: "olx", Value: "https://olx.com.pk/profile/1"},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := findSignal(t, a, "Cross-platform accounts")
		if s.Status != model.StatusLow || !strings.Contains(s.Note, "2 related account(s)") {
			t.Errorf("linked accounts = %v/%q", s.Status, s.Note)
		}
	})

	t.Run("negative account", func(t *testing.T) {
		t.Parallel()

		e, _ := newStubEngine(t, negativeSearchBody)
		a, err := e.Assess(context.Background(), Input{
			EntityType:  "whatsapp",
			EntityValue: "+923001234567",
			Linked:      []model.LinkedAccount{{Platform: "facebook", Value: "https://facebook.com/x"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := findSignal(t, a, "Cross-platform accounts")
		if s.Status != model.StatusHigh {
			t.Errorf("linked accounts = %v, want High with negative mentions", s.Status)
		}
	})

	t.Run("empty values only", func(t *testing.T) {
		t.Parallel()

		e := newOfflineEngine()
		a, err := e.Assess(context.Background(), Input{
			EntityType:  "whatsapp",
			EntityValue: "+923001234567",
			Linked:      []model.LinkedAccount{{Platform: "facebook", Value: ""}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := findSignal(t, a, "Cross-platform accounts")
		if s.Status != model.StatusUnknown || s.Note != "Related accounts list is empty." {
			t.Errorf("linked accounts = %v/%q", s.Status, s.Note)
		}
	})
}

func TestAssess_facebookKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      string
		wantStatus model.Status
		wantKind   string
	}{
		{name: "group", value: "https://facebook.com/groups/123", wantStatus: model.StatusUnknown, wantKind: "group"},
		{name: "profile", value: "https://facebook.com/profile.php?id=42", wantStatus: model.StatusLow, wantKind: "profile"},
		{name: "page", value: "https://facebook.com/someshop", wantStatus: model.StatusLow, wantKind: "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newOfflineEngine()
			a, err := e.Assess(context.Background(), Input{
				EntityType:  "facebook",
				EntityValue: tt.value,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s := findSignal(t, a, "Entity type")
			if s.Status != tt.wantStatus {
				t.Errorf("entity type status = %v, want %v", s.Status, tt.wantStatus)
			}
			if kind, _ := s.Meta["kind"].(string); kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}
