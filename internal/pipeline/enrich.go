package pipeline

import (
	"context"
	"fmt"

	"leadflow/internal"
)

// NotFoundMarker is written to the LinkedIn URL column when resolution
// finds nothing, so downstream consumers can tell "searched, missed"
// from "never searched".
const NotFoundMarker = "NA"

// ProfileResolver is the external collaborator that maps identity
// fields to a profile URL. ok is false when no profile was found;
// network and parse failures surface as not-found, never as errors.
type ProfileResolver interface {
	Resolve(ctx context.Context, firstName, lastName, company, email string) (string, bool)
}

type EnrichSummary struct {
	Attempted int
	Found     int
	Missed    int
	Skipped   int
}

// EnrichTable resolves a LinkedIn profile URL for each lead in place.
// Rows without enough identity data to search are skipped and marked.
func EnrichTable(ctx context.Context, resolver ProfileResolver, table *internal.LeadTable) EnrichSummary {
	summary := EnrichSummary{}
	for i := range table.Leads {
		lead := &table.Leads[i]

		if !searchable(*lead) {
			fmt.Printf("row %d: insufficient data for search, LinkedIn URL set to %s\n", i+1, NotFoundMarker)
			lead.LinkedInURL = NotFoundMarker
			summary.Skipped++
			continue
		}

		fmt.Printf("row %d: searching name=%q company=%q email=%q\n", i+1, fullName(*lead), lead.Company, lead.Email)
		summary.Attempted++
		url, found := resolver.Resolve(ctx, lead.FirstName, lead.LastName, lead.Company, lead.Email)
		if found {
			fmt.Printf("row %d: found %s\n", i+1, url)
			lead.LinkedInURL = url
			summary.Found++
		} else {
			fmt.Printf("row %d: no profile found\n", i+1)
			lead.LinkedInURL = NotFoundMarker
			summary.Missed++
		}
	}
	return summary
}

// searchable requires either a full name+company triple or an email.
func searchable(lead internal.LeadRecord) bool {
	if lead.FirstName == "" && lead.LastName == "" && lead.Company == "" && lead.Email == "" {
		return false
	}
	hasTriple := lead.FirstName != "" && lead.LastName != "" && lead.Company != ""
	return hasTriple || lead.Email != ""
}

func fullName(lead internal.LeadRecord) string {
	if lead.FirstName == "" {
		return lead.LastName
	}
	if lead.LastName == "" {
		return lead.FirstName
	}
	return lead.FirstName + " " + lead.LastName
}
