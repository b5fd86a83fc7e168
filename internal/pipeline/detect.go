package pipeline

import "strings"

type DetectResult struct {
	IsLeadList bool
	Score      float64
	Reason     string
}

var detectKeywords = []string{"lead", "leads", "prospect", "contact list", "outreach", "crm export", "mailing list"}

// DetectLeadList scores whether a fetched email looks like it carries a
// lead list, from its subject, body and attachment names.
func DetectLeadList(subject, text, html string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)
	html = strings.ToLower(html)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) || strings.Contains(html, kw) {
			score += 0.1
		}
	}

	emailHits := len(reEmailToken.FindAllString(text, 4))
	if emailHits >= 3 {
		score += 0.4
	} else if emailHits >= 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") ||
			strings.HasSuffix(ln, ".csv") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if strings.Contains(html, "<table") {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isLeadList := score >= 0.45
	reason := "rules_negative"
	if isLeadList {
		reason = "rules_positive"
	}

	return DetectResult{IsLeadList: isLeadList, Score: score, Reason: reason}
}
