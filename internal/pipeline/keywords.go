package pipeline

// RefSets are the process-wide reference sets the heuristics compare
// against. They are static configuration, never derived from input.
type RefSets struct {
	// GenericEmailDomains are consumer webmail domains that must not be
	// treated as a company identity.
	GenericEmailDomains map[string]struct{}
	// InvalidNameKeywords are lowercase tokens (role titles, departments,
	// legal-entity suffixes) that disqualify a string as a person's name.
	InvalidNameKeywords map[string]struct{}
}

var genericEmailDomains = []string{
	"gmail.com", "outlook.com", "yahoo.com", "hotmail.com", "aol.com",
	"icloud.com", "me.com", "msn.com", "live.com", "protonmail.com",
	"zoho.com", "yandex.com", "gmx.com", "mail.com",
}

var invalidNameKeywords = []string{
	"admin", "administrator", "ceo", "cfo", "cto", "coo", "contact", "careers",
	"director", "desk", "exports", "enquiries", "enquiry", "executive", "finance",
	"group", "help", "hr", "info", "information", "inquiries", "inquiry", "jobs",
	"legal", "manager", "management", "manufacturing", "marketing", "media",
	"office", "operations", "president", "press", "promo", "promotions", "purchase",
	"recruitment", "sales", "secretary", "service", "services", "support", "team",
	"technical", "technology", "webmaster", "website", "accounts", "billing",
	"dept", "department", "inc", "llc", "ltd", "corp", "corporate", "solutions",
}

// Second-level-domain markers that precede a true TLD in multi-label
// domains like example.co.uk.
var knownSLDMarkers = map[string]struct{}{
	"co": {}, "com": {}, "org": {}, "net": {}, "ac": {},
	"gov": {}, "edu": {}, "mil": {}, "biz": {}, "info": {},
}

func DefaultRefSets() RefSets {
	sets := RefSets{
		GenericEmailDomains: make(map[string]struct{}, len(genericEmailDomains)),
		InvalidNameKeywords: make(map[string]struct{}, len(invalidNameKeywords)),
	}
	for _, d := range genericEmailDomains {
		sets.GenericEmailDomains[d] = struct{}{}
	}
	for _, k := range invalidNameKeywords {
		sets.InvalidNameKeywords[k] = struct{}{}
	}
	return sets
}
