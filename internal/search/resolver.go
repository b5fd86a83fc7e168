package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadflow/internal/config"
)

// Resolver maps identity fields to a LinkedIn profile URL through
// staged search attempts: specific name+company, relaxed name+company,
// then email. The first stage yielding a candidate wins; every failure
// mode degrades to "not found".
type Resolver struct {
	client  *Client
	baseURL string
}

func NewResolver(cfg config.Config) *Resolver {
	return &Resolver{
		client:  NewClient(cfg),
		baseURL: strings.TrimRight(cfg.SearchBaseURL, "/"),
	}
}

type attempt struct {
	name string
	url  string
}

// Resolve returns the profile URL for a lead, or ("", false) when no
// stage produced a match.
func (r *Resolver) Resolve(ctx context.Context, firstName, lastName, company, email string) (string, bool) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	company = strings.TrimSpace(company)
	email = strings.TrimSpace(email)

	attempts := make([]attempt, 0, 3)
	if firstName != "" && lastName != "" && company != "" {
		attempts = append(attempts, attempt{"specific", specificQueryURL(r.baseURL, firstName, lastName, company)})
	}
	if (firstName != "" || lastName != "") && company != "" {
		attempts = append(attempts, attempt{"general", generalQueryURL(r.baseURL, firstName, lastName, company)})
	}
	if email != "" {
		attempts = append(attempts, attempt{"email", emailQueryURL(r.baseURL, email)})
	}

	for _, a := range attempts {
		html, err := r.client.FetchResultPage(ctx, a.url)
		if err != nil {
			if errors.Is(err, ErrBlocked) {
				fmt.Printf("  attempt %s: blocked by search engine\n", a.name)
			} else {
				fmt.Printf("  attempt %s: %v\n", a.name, err)
			}
			continue
		}
		if profile := pickProfileURL(extractLinkedInLinks(html)); profile != "" {
			return profile, true
		}
	}
	return "", false
}
