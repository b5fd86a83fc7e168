package search

import (
	"net/url"
	"strings"
)

// Query builders for the three staged lookup attempts. Each returns a
// full search URL against the configured engine endpoint.

func specificQueryURL(baseURL, firstName, lastName, company string) string {
	parts := []string{`site:linkedin.com/in/`}
	if name := fullName(firstName, lastName); name != "" {
		parts = append(parts, `"`+name+`"`)
	}
	if company = strings.TrimSpace(company); company != "" {
		parts = append(parts, `"`+company+`"`)
	}
	return searchURL(baseURL, strings.Join(parts, " "))
}

func generalQueryURL(baseURL, firstName, lastName, company string) string {
	parts := []string{}
	if name := fullName(firstName, lastName); name != "" {
		parts = append(parts, `"`+name+`"`)
	}
	if company = strings.TrimSpace(company); company != "" {
		parts = append(parts, `"`+company+`"`)
	}
	parts = append(parts, "LinkedIn")
	return searchURL(baseURL, strings.Join(parts, " "))
}

func emailQueryURL(baseURL, email string) string {
	return searchURL(baseURL, `"`+strings.TrimSpace(email)+`" LinkedIn profile`)
}

func fullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

func searchURL(baseURL, query string) string {
	return baseURL + "?q=" + url.QueryEscape(query) + "&ensearch=1"
}
