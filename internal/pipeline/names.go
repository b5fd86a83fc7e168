package pipeline

import (
	"regexp"
	"strings"

	"leadflow/internal/util"
)

// NamePart is the result of cleaning a candidate name fragment. A
// fragment is either a usable value, empty, or disqualified because one
// of its tokens is a role/department/legal keyword rather than a name.
type NamePart struct {
	Value        string
	Disqualified bool
}

func (p NamePart) OK() bool { return !p.Disqualified && p.Value != "" }

func (p NamePart) Empty() bool { return !p.Disqualified && p.Value == "" }

// CleanNamePart validates and title-cases a name fragment. Tokens are
// compared against the disqualifying keyword set with one leading and
// one trailing punctuation character stripped; the fragment itself is
// returned unstripped.
func (n *Normalizer) CleanNamePart(fragment string) NamePart {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return NamePart{}
	}

	for _, token := range strings.Fields(strings.ToLower(fragment)) {
		if _, bad := n.sets.InvalidNameKeywords[util.StripEdgePunct(token)]; bad {
			return NamePart{Disqualified: true}
		}
	}
	return NamePart{Value: util.TitleCase(fragment)}
}

// SplitFullName splits a combined name into (first, last), each cleaned.
// The last whitespace token becomes the last name; everything before it
// the first name. No multi-word surname detection.
func (n *Normalizer) SplitFullName(full string) (NamePart, NamePart) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return NamePart{}, NamePart{}
	}
	if len(parts) == 1 {
		return n.CleanNamePart(parts[0]), NamePart{}
	}
	first := strings.Join(parts[:len(parts)-1], " ")
	return n.CleanNamePart(first), n.CleanNamePart(parts[len(parts)-1])
}

var reLeadingSeparators = regexp.MustCompile(`^[._-]+`)

// DeriveLastFromEmail infers a last name from the email local part given
// a confirmed first name. Three ordered attempts, each broader than the
// last: separator-delimited split, direct concatenation, loose strip.
// Returns "" when nothing usable is found.
func (n *Normalizer) DeriveLastFromEmail(firstName, email string) string {
	if firstName == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at < 0 {
		return ""
	}

	local := util.StripTrailingDigits(strings.ToLower(email[:at]))
	fn := regexp.QuoteMeta(strings.ToLower(firstName))

	if m := regexp.MustCompile(`^` + fn + `[._-]([a-zA-Z][a-zA-Z0-9_.\-]*)$`).FindStringSubmatch(local); m != nil {
		return n.cleanDerived(m[1])
	}
	if m := regexp.MustCompile(`^` + fn + `([a-zA-Z][a-zA-Z0-9_.\-]*)$`).FindStringSubmatch(local); m != nil {
		return n.cleanDerived(m[1])
	}
	if m := regexp.MustCompile(`^` + fn + `(.+)$`).FindStringSubmatch(local); m != nil {
		candidate := reLeadingSeparators.ReplaceAllString(m[1], "")
		if candidate != "" && util.ContainsLetter(candidate) {
			return n.cleanDerived(candidate)
		}
	}
	return ""
}

var reLocalSeparators = regexp.MustCompile(`[._-]+`)

// NamesFromEmail recovers a (first, last) pair from the email local
// part when the row carries no name at all. Requires at least two
// separator-delimited alphabetic segments; returns ("", "") otherwise.
func (n *Normalizer) NamesFromEmail(email string) (string, string) {
	at := strings.Index(email, "@")
	if at < 0 {
		return "", ""
	}

	local := util.StripTrailingDigits(strings.ToLower(email[:at]))
	segments := []string{}
	for _, seg := range reLocalSeparators.Split(local, -1) {
		if seg != "" && util.ContainsLetter(seg) {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return "", ""
	}

	first := n.CleanNamePart(segments[0])
	last := n.CleanNamePart(strings.Join(segments[1:], " "))
	if !first.OK() || !last.OK() {
		return "", ""
	}
	return first.Value, last.Value
}

// cleanDerived runs a derived candidate through the cleaner; a
// disqualified candidate counts as no inference.
func (n *Normalizer) cleanDerived(candidate string) string {
	part := n.CleanNamePart(candidate)
	if !part.OK() {
		return ""
	}
	return part.Value
}
