package audit

import (
	"net/url"
	"regexp"
	"strings"
)

type Category string

const (
	CategoryPoliticalDatabase Category = "political_database"
	CategorySocialMedia       Category = "social_media"
	CategoryProfessional      Category = "professional"
	CategoryContent           Category = "content"
	CategoryNewsMedia         Category = "news_media"
	CategoryScheduling        Category = "scheduling"
	CategoryCampaignWebsite   Category = "campaign_website"
	CategoryWebsite           Category = "website"
)

type Classification struct {
	PlatformType string   `json:"platform_type"`
	PlatformName string   `json:"platform_name"`
	Category     Category `json:"category"`
}

type platformRule struct {
	pattern      *regexp.Regexp
	platformType string
	platformName string
	category     Category
}

// Rules match against lowercased host+path; first match wins.
var platformRules = []platformRule{
	{regexp.MustCompile(`^(www\.)?ballotpedia\.org/`), "ballotpedia", "Ballotpedia", CategoryPoliticalDatabase},
	{regexp.MustCompile(`^(www\.|justfacts\.)?votesmart\.org/`), "votesmart", "Vote Smart", CategoryPoliticalDatabase},
	{regexp.MustCompile(`^(www\.)?opensecrets\.org/`), "opensecrets", "OpenSecrets", CategoryPoliticalDatabase},
	{regexp.MustCompile(`^(www\.)?fec\.gov/data/`), "fec", "FEC", CategoryPoliticalDatabase},
	{regexp.MustCompile(`^(www\.)?govtrack\.us/`), "govtrack", "GovTrack", CategoryPoliticalDatabase},
	{regexp.MustCompile(`^(www\.)?vote411\.org/`), "vote411", "VOTE411", CategoryPoliticalDatabase},

	{regexp.MustCompile(`^(www\.|m\.)?facebook\.com/[^/]+`), "facebook", "Facebook", CategorySocialMedia},
	{regexp.MustCompile(`^(www\.|mobile\.)?(twitter|x)\.com/[^/]+`), "twitter", "X (Twitter)", CategorySocialMedia},
	{regexp.MustCompile(`^(www\.)?instagram\.com/[^/]+`), "instagram", "Instagram", CategorySocialMedia},
	{regexp.MustCompile(`^(www\.)?tiktok\.com/@[^/]+`), "tiktok", "TikTok", CategorySocialMedia},
	{regexp.MustCompile(`^(www\.)?threads\.net/@[^/]+`), "threads", "Threads", CategorySocialMedia},
	{regexp.MustCompile(`^bsky\.app/profile/[^/]+`), "bluesky", "Bluesky", CategorySocialMedia},

	{regexp.MustCompile(`^([a-z]{2,3}\.|www\.)?linkedin\.com/in/[^/]+`), "linkedin", "LinkedIn", CategoryProfessional},
	{regexp.MustCompile(`^([a-z]{2,3}\.|www\.)?linkedin\.com/company/[^/]+`), "linkedin_company", "LinkedIn", CategoryProfessional},

	{regexp.MustCompile(`^(www\.|m\.)?youtube\.com/(@|c/|channel/|user/)[^/]+`), "youtube", "YouTube", CategoryContent},
	{regexp.MustCompile(`^(www\.)?medium\.com/@[^/]+`), "medium", "Medium", CategoryContent},
	{regexp.MustCompile(`^[a-z0-9-]+\.substack\.com`), "substack", "Substack", CategoryContent},
	{regexp.MustCompile(`^[a-z0-9-]+\.medium\.com`), "medium", "Medium", CategoryContent},

	{regexp.MustCompile(`^([a-z]{2}\.)?(www\.)?wikipedia\.org/wiki/`), "wikipedia", "Wikipedia", CategoryNewsMedia},
	{regexp.MustCompile(`^(www\.)?patch\.com/`), "patch", "Patch", CategoryNewsMedia},
	{regexp.MustCompile(`^(www\.)?(apnews|reuters|politico|thehill|nytimes|washingtonpost|npr)\.(com|org)/`), "news", "News", CategoryNewsMedia},

	{regexp.MustCompile(`^(www\.)?mobilize\.us/`), "mobilize", "Mobilize", CategoryScheduling},
	{regexp.MustCompile(`^(www\.)?eventbrite\.com/`), "eventbrite", "Eventbrite", CategoryScheduling},
	{regexp.MustCompile(`^(www\.)?calendly\.com/`), "calendly", "Calendly", CategoryScheduling},
}

// knownPlatformDomains never count as custom campaign domains, even when no rule matched.
var knownPlatformDomains = []string{
	"ballotpedia.org", "votesmart.org", "opensecrets.org", "fec.gov", "govtrack.us", "vote411.org",
	"facebook.com", "twitter.com", "x.com", "instagram.com", "tiktok.com", "threads.net", "bsky.app",
	"linkedin.com", "youtube.com", "youtu.be", "medium.com", "substack.com",
	"wikipedia.org", "patch.com", "apnews.com", "reuters.com", "politico.com", "thehill.com",
	"nytimes.com", "washingtonpost.com", "npr.org",
	"mobilize.us", "eventbrite.com", "calendly.com",
	"google.com", "bing.com", "duckduckgo.com", "yahoo.com", "reddit.com", "amazon.com",
	"actblue.com", "winred.com",
}

var campaignKeywords = []string{
	"vote", "elect", "campaign", "senate", "congress", "council", "mayor",
	"governor", "assembly", "delegate", "sheriff", "judge", "forstate", "for-",
}

// ParsedURL splits a URL-like string into a lowercased host and path.
// ok is false when the string does not look like a URL.
func ParsedURL(raw string) (host string, path string, ok bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" || strings.ContainsAny(candidate, " \t\n") {
		return "", "", false
	}
	if !strings.Contains(candidate, "://") {
		if strings.Contains(candidate, "@") || strings.HasPrefix(strings.ToLower(candidate), "mailto:") {
			return "", "", false
		}
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", "", false
	}
	scheme := strings.ToLower(parsed.Scheme)
	if parsed.User != nil || (scheme != "http" && scheme != "https") {
		return "", "", false
	}
	host = strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return "", "", false
	}
	return host, strings.ToLower(parsed.EscapedPath()), true
}

// Classify maps a URL to a platform. It returns nil when the string is not URL-like
// or when it points at a known platform in a shape no rule recognises.
func Classify(rawURL string) *Classification {
	host, path, ok := ParsedURL(rawURL)
	if !ok {
		return nil
	}

	subject := host + path
	if path == "" {
		subject = host + "/"
	}
	for _, rule := range platformRules {
		if rule.pattern.MatchString(subject) {
			return &Classification{
				PlatformType: rule.platformType,
				PlatformName: rule.platformName,
				Category:     rule.category,
			}
		}
	}

	if isKnownPlatformDomain(host) {
		return nil
	}

	lowerURL := strings.ToLower(rawURL)
	for _, keyword := range campaignKeywords {
		if strings.Contains(host, keyword) || strings.Contains(lowerURL, keyword) {
			return &Classification{
				PlatformType: string(CategoryCampaignWebsite),
				PlatformName: DisplayNameFromDomain(host),
				Category:     CategoryCampaignWebsite,
			}
		}
	}
	return &Classification{
		PlatformType: string(CategoryWebsite),
		PlatformName: DisplayNameFromDomain(host),
		Category:     CategoryWebsite,
	}
}

func isKnownPlatformDomain(host string) bool {
	for _, domain := range knownPlatformDomains {
		if hostMatches(host, domain) {
			return true
		}
	}
	return false
}

func hostMatches(host string, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// DisplayNameFromDomain turns "www.jane-doe.for-senate.com" into "Jane Doe For Senate".
func DisplayNameFromDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if idx := strings.LastIndex(host, "."); idx > 0 {
		host = host[:idx]
	}

	parts := strings.FieldsFunc(host, func(r rune) bool {
		return r == '-' || r == '.'
	})
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
