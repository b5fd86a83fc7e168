package pipeline

import (
	"strings"

	"leadflow/internal/util"
)

// CompanyFromEmail guesses a company display name from an email domain.
// Returns "" when the input is not an email or the domain is generic
// webmail.
func (n *Normalizer) CompanyFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	domain := strings.ToLower(email[at+1:])
	if _, generic := n.sets.GenericEmailDomains[domain]; generic {
		return ""
	}

	parts := strings.Split(domain, ".")
	name := ""
	switch {
	case len(parts) >= 2:
		// example.co.uk keeps "example", example.com keeps "example".
		if _, sld := knownSLDMarkers[parts[len(parts)-2]]; len(parts) > 2 && sld {
			name = parts[len(parts)-3]
		} else {
			name = parts[len(parts)-2]
		}
	case len(parts) == 1:
		name = parts[0]
	}

	if name == "" {
		return ""
	}
	return util.TitleCase(strings.ReplaceAll(name, "-", " "))
}
