package audit

import "testing"

func TestClassify(t *testing.T) {
	testCases := []struct {
		url          string
		platformType string
		category     Category
		name         string
	}{
		{url: "https://ballotpedia.org/Jane_Doe", platformType: "ballotpedia", category: CategoryPoliticalDatabase, name: "Ballotpedia"},
		{url: "https://www.facebook.com/janedoeforsenate", platformType: "facebook", category: CategorySocialMedia, name: "Facebook"},
		{url: "x.com/janedoe", platformType: "twitter", category: CategorySocialMedia, name: "X (Twitter)"},
		{url: "https://www.linkedin.com/in/jane-doe", platformType: "linkedin", category: CategoryProfessional, name: "LinkedIn"},
		{url: "https://www.youtube.com/@janedoe", platformType: "youtube", category: CategoryContent, name: "YouTube"},
		{url: "https://www.mobilize.us/janedoe/event/1", platformType: "mobilize", category: CategoryScheduling, name: "Mobilize"},
		{url: "https://janedoe-for-senate.com", platformType: "campaign_website", category: CategoryCampaignWebsite, name: "Janedoe For Senate"},
		{url: "https://smithbakery.com/about", platformType: "website", category: CategoryWebsite, name: "Smithbakery"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.url, func(t *testing.T) {
			got := Classify(testCase.url)
			if got == nil {
				t.Fatalf("Classify(%q) = nil", testCase.url)
			}
			if got.PlatformType != testCase.platformType || got.Category != testCase.category || got.PlatformName != testCase.name {
				t.Fatalf("Classify(%q) = %+v", testCase.url, *got)
			}
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	for _, raw := range []string{"", "not a url", "mailto:jane@example.com", "localhost/path", "https://www.facebook.com/", "https://www.google.com/search?q=jane"} {
		if got := Classify(raw); got != nil {
			t.Fatalf("Classify(%q) = %+v, want nil", raw, *got)
		}
	}
}

func TestDisplayNameFromDomain(t *testing.T) {
	if got := DisplayNameFromDomain("www.jane-doe.for-senate.com"); got != "Jane Doe For Senate" {
		t.Fatalf("DisplayNameFromDomain() = %q", got)
	}
	if got := DisplayNameFromDomain("electjane.org"); got != "Electjane" {
		t.Fatalf("DisplayNameFromDomain() = %q", got)
	}
}

func TestDedupKey(t *testing.T) {
	if DedupKey("http://Example.com/x/") != DedupKey("https://example.com/x") {
		t.Fatalf("DedupKey mismatch: %q vs %q", DedupKey("http://Example.com/x/"), DedupKey("https://example.com/x"))
	}
	if got := DedupKey("https://example.com/x?utm=1#top"); got != "example.com/x" {
		t.Fatalf("DedupKey() = %q", got)
	}
	if DedupKey("https://example.com/x") == DedupKey("https://example.com/y") {
		t.Fatalf("distinct paths collapsed")
	}
}
