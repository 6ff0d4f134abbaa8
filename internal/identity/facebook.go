package identity

import (
	"strings"

	"github.com/umerontech/riskcheck/internal/model"
)

// ClassifyFacebookURL classifies a Facebook URL by substring heuristics on
// its path. Non-Facebook URLs classify as unknown; everything that is not
// recognizably a group or profile defaults to page, because commerce links
// overwhelmingly point at pages.
func ClassifyFacebookURL(rawURL string) model.FacebookKind {
	u := strings.ToLower(rawURL)

	if !strings.Contains(u, "facebook.com") {
		return model.FacebookUnknown
	}
	if strings.Contains(u, "/groups/") {
		return model.FacebookGroup
	}
	if strings.Contains(u, "profile.php") {
		return model.FacebookProfile
	}
	return model.FacebookPage
}
