package pipeline

import (
	"strings"

	"leadflow/internal"
	"leadflow/internal/util"
)

// Status trail fragments recorded per fired heuristic.
const (
	statusSwapped     = "Swapped Name/Company"
	statusSplitFN     = "Split FN to FN/LN"
	statusSplitFull   = "Split full name from FN"
	statusDerivedLN   = "Derived LN from Email"
	statusDerivedName = "Derived Name from Email"
	statusProcessed   = "Processed"
	statusSeparator   = "; "
)

// Normalizer runs the per-row heuristic chain. It is stateless across
// rows; the reference sets are immutable after construction, so a single
// Normalizer may be shared freely.
type Normalizer struct {
	sets RefSets
}

func NewNormalizer(sets RefSets) *Normalizer {
	return &Normalizer{sets: sets}
}

// leadState carries one record through the stage chain.
type leadState struct {
	lead  internal.LeadRecord
	first string
	last  string
	comp  string
	trail []string
}

// stage transforms the state in place; a non-empty DropReason
// short-circuits the chain and excludes the row from output.
type stage func(*leadState) internal.DropReason

// Normalize runs the full heuristic chain over one record. ok reports
// whether the row survived; dropped rows carry the reason instead.
func (n *Normalizer) Normalize(lead internal.LeadRecord) (internal.LeadRecord, internal.DropReason, bool) {
	state := &leadState{
		lead:  lead,
		first: strings.TrimSpace(lead.FirstName),
		last:  strings.TrimSpace(lead.LastName),
		comp:  strings.TrimSpace(lead.Company),
	}
	state.lead.Email = strings.TrimSpace(lead.Email)

	stages := []stage{
		n.swapStage,
		n.emailGate,
		n.companyStage,
		n.splitStage,
		n.cleanAndDeriveStage,
	}
	for _, run := range stages {
		if reason := run(state); reason != "" {
			return internal.LeadRecord{}, reason, false
		}
	}

	state.lead.FirstName = state.first
	state.lead.LastName = state.last
	state.lead.Company = state.comp
	state.trail = append(state.trail, statusProcessed)
	state.lead.Status = strings.Join(state.trail, statusSeparator)
	return state.lead, "", true
}

func (s *leadState) mark(fragment string) {
	s.trail = append(s.trail, fragment)
}

func (n *Normalizer) swapStage(s *leadState) internal.DropReason {
	res := n.DetectSwap(s.first, s.last, s.comp, s.lead.Email)
	if res.Swapped {
		s.first, s.last, s.comp = res.FirstName, res.LastName, res.Company
		s.mark(statusSwapped)
	}
	return ""
}

func (n *Normalizer) emailGate(s *leadState) internal.DropReason {
	if s.lead.Email == "" {
		return internal.DropMissingEmail
	}
	return ""
}

// companyStage resolves the company: an explicit field wins (title-cased),
// otherwise the email domain is consulted.
func (n *Normalizer) companyStage(s *leadState) internal.DropReason {
	if s.comp != "" {
		s.comp = util.TitleCase(s.comp)
	} else {
		s.comp = n.CompanyFromEmail(s.lead.Email)
	}
	if s.comp == "" {
		return internal.DropMissingCompany
	}
	return ""
}

// splitStage repairs combined or duplicated name fields before cleaning.
func (n *Normalizer) splitStage(s *leadState) internal.DropReason {
	fnTokens := strings.Fields(s.first)
	switch {
	case s.last == "" && strings.Contains(s.first, " "):
		first, last := n.SplitFullName(s.first)
		if last.OK() {
			s.first, s.last = first.Value, last.Value
			s.mark(statusSplitFN)
		}
	case s.first != "" && (s.last == "" ||
		strings.EqualFold(s.last, s.first) ||
		(len(fnTokens) > 1 && strings.EqualFold(s.last, fnTokens[len(fnTokens)-1]))):
		first, last := n.SplitFullName(s.first)
		if last.OK() {
			s.first, s.last = first.Value, last.Value
			s.mark(statusSplitFull)
		}
	}
	return ""
}

// cleanAndDeriveStage validates both name parts, falls back to
// email-derived name inference, and applies the final gate.
func (n *Normalizer) cleanAndDeriveStage(s *leadState) internal.DropReason {
	first := n.CleanNamePart(s.first)
	last := n.CleanNamePart(s.last)

	if first.Empty() && last.Empty() {
		if f, l := n.NamesFromEmail(s.lead.Email); f != "" && l != "" {
			first, last = NamePart{Value: f}, NamePart{Value: l}
			s.mark(statusDerivedName)
		}
	}

	if first.OK() && !last.OK() {
		if derived := n.DeriveLastFromEmail(first.Value, s.lead.Email); derived != "" {
			last = NamePart{Value: derived}
			s.mark(statusDerivedLN)
		}
	}

	if !first.OK() || !last.OK() {
		return internal.DropInvalidName
	}
	s.first, s.last = first.Value, last.Value
	return ""
}
