package search

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const profilePrefix = "https://www.linkedin.com/in/"

var (
	reProfileShape = regexp.MustCompile(`^https://www\.linkedin\.com/in/[a-zA-Z0-9-]+(?:-[a-zA-Z0-9-]+)*$`)
	rePostAuthor   = regexp.MustCompile(`linkedin\.com/posts/([^/_]+)_`)
)

// extractLinkedInLinks pulls every linkedin.com anchor out of a search
// result page, stripped of query strings and trailing slashes, in
// first-seen order.
func extractLinkedInLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "linkedin.com/") {
			return
		}
		if !strings.HasPrefix(href, "http://www.linkedin.com/") && !strings.HasPrefix(href, "https://www.linkedin.com/") {
			return
		}
		clean := strings.TrimSuffix(strings.SplitN(href, "?", 2)[0], "/")
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		links = append(links, clean)
	})
	return links
}

// deriveProfileFromActivityURL recovers a profile URL from a LinkedIn
// activity-post URL, whose first path segment embeds the author handle.
func deriveProfileFromActivityURL(activityURL string) string {
	m := rePostAuthor.FindStringSubmatch(activityURL)
	if m == nil {
		return ""
	}
	return profilePrefix + m[1]
}

// pickProfileURL selects the best candidate: the first canonical
// profile link, else the first profile derived from an activity post.
func pickProfileURL(links []string) string {
	derived := ""
	for _, link := range links {
		if strings.HasPrefix(link, profilePrefix) {
			if reProfileShape.MatchString(link) {
				return link
			}
			continue
		}
		if derived == "" && strings.HasPrefix(link, "https://www.linkedin.com/posts/") {
			derived = deriveProfileFromActivityURL(link)
		}
	}
	return derived
}
