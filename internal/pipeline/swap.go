package pipeline

import (
	"strings"

	"leadflow/internal/util"
)

// SwapResult is the decision of the name/company swap heuristic. When
// Swapped is true the caller must adopt the rewritten fields.
type SwapResult struct {
	Swapped   bool
	FirstName string
	LastName  string
	Company   string
}

var localSeparators = strings.NewReplacer(".", "", "_", "", "-", "")

// DetectSwap spots lead rows where a person's full name landed in the
// Company column and a department string in the Name column. The swap is
// confirmed only when the company field looks like a human name AND the
// email local part matches a plausible first/last pattern built from it,
// while the original name field looks unrelated to the email (or the
// last name was empty).
func (n *Normalizer) DetectSwap(firstName, lastName, company, email string) SwapResult {
	none := SwapResult{}
	if company == "" || firstName == "" || email == "" {
		return none
	}

	compParts := strings.Fields(company)
	if len(compParts) != 2 && len(compParts) != 3 {
		return none
	}
	for _, p := range compParts {
		if !util.AlphabeticToken(p) {
			return none
		}
		bare := strings.ReplaceAll(strings.ToLower(p), ".", "")
		if _, bad := n.sets.InvalidNameKeywords[bare]; bad {
			return none
		}
	}

	potentialFirst := compParts[0]
	potentialLast := strings.Join(compParts[1:], " ")

	at := strings.Index(email, "@")
	if at < 0 {
		return none
	}
	local := util.StripTrailingDigits(strings.ToLower(email[:at]))

	fn := strings.ToLower(potentialFirst)
	ln := strings.Join(strings.Fields(strings.ToLower(potentialLast)), "")

	if !localMatchesName(local, fn, ln) {
		return none
	}

	origFirstWord := strings.ToLower(strings.Fields(firstName)[0])
	origSeemsUnrelated := !strings.HasPrefix(local, origFirstWord)
	if lastName != "" && !origSeemsUnrelated {
		return none
	}

	return SwapResult{
		Swapped:   true,
		FirstName: potentialFirst,
		LastName:  potentialLast,
		Company:   firstName,
	}
}

func localMatchesName(local, fn, ln string) bool {
	seps := []string{".", "_", "-", ""}
	patterns := make([]string, 0, 12)
	for _, sep := range seps {
		patterns = append(patterns, fn+sep+ln)
	}
	if len(fn) > 0 {
		for _, sep := range seps {
			patterns = append(patterns, fn[:1]+sep+ln)
		}
	}
	if len(ln) > 0 {
		for _, sep := range seps {
			patterns = append(patterns, fn+sep+ln[:1])
		}
	}

	for _, p := range patterns {
		if local == p {
			return true
		}
	}
	// Punctuation-insensitive fallback: j.o-n.es style local parts.
	return localSeparators.Replace(local) == fn+ln
}
