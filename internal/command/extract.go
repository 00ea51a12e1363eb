package command

import (
	"regexp"
	"strings"
)

var (
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	quotedRe  = regexp.MustCompile(`"([^"]*)"`)
	docIDRe   = regexp.MustCompile(`(?i)\b(invoice|quote)\s+(\w+)\b`)
	queryLead = regexp.MustCompile(`(?i)^(?:for|from|about|with)\s+`)
	nameLead  = regexp.MustCompile(`(?i)^(?:called|named)\s+`)
)

// helpKeywords map words after "help with email" to help topics, first match wins.
var helpKeywords = []struct {
	words []string
	topic string
}{
	{words: []string{"template"}, topic: "templates"},
	{words: []string{"campaign"}, topic: "campaigns"},
	{words: []string{"automation", "rule", "schedul"}, topic: "automation"},
	{words: []string{"search", "find", "lookup"}, topic: "search"},
	{words: []string{"compos", "writ"}, topic: "compose"},
	{words: []string{"send"}, topic: "send"},
}

// Earlier patterns win even when a later one appears first in the utterance.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bat\s+\d{1,2}(?::\d{2}\s*(?:am|pm)?|\s*(?:am|pm))\b`),
	regexp.MustCompile(`(?i)\bin\s+\d+\s+(?:minutes?|hours?|days?)\b`),
	regexp.MustCompile(`(?i)\b(?:tomorrow|today|tonight)\b`),
	regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
}

// Extract pulls the parameters of action out of the original-case utterance.
// phrase is the table phrase the utterance matched.
func Extract(action ActionID, phrase, utterance string) Params {
	var p Params

	switch action {
	case Send:
		p.Recipient = firstEmail(utterance)
		quoted := quotedStrings(utterance)
		p.Subject = at(quoted, 0)
		p.Message = at(quoted, 1)

	case SearchEmails, SearchByFrom, SearchBySubject:
		rest := remainder(utterance, phrase)
		p.Query = strings.TrimSpace(queryLead.ReplaceAllString(rest, ""))

	case CreateFolder, DeleteFolder:
		rest := remainder(utterance, phrase)
		rest = strings.TrimSpace(nameLead.ReplaceAllString(rest, ""))
		p.FolderName = strings.TrimSpace(strings.Trim(rest, `"`))

	case CreateTemplate:
		quoted := quotedStrings(utterance)
		p.TemplateName = at(quoted, 0)
		p.Subject = at(quoted, 1)
		p.Body = at(quoted, 2)

	case ScheduleEmail:
		p.Recipient = firstEmail(utterance)
		quoted := quotedStrings(utterance)
		p.Subject = at(quoted, 0)
		p.Message = at(quoted, 1)
		p.ScheduledTime = timePhrase(utterance)

	case SendInvoiceEmail:
		p.Recipient = firstEmail(utterance)
		p.InvoiceID = documentID(utterance, "invoice")

	case SendQuoteEmail:
		p.Recipient = firstEmail(utterance)
		p.QuoteID = documentID(utterance, "quote")

	case EmailHelp:
		p.Topic = helpTopic(utterance)
	}

	return p
}

func helpTopic(s string) string {
	s = strings.ToLower(s)
	for _, k := range helpKeywords {
		for _, w := range k.words {
			if strings.Contains(s, w) {
				return k.topic
			}
		}
	}
	return ""
}

func firstEmail(s string) string {
	return emailRe.FindString(s)
}

func quotedStrings(s string) []string {
	matches := quotedRe.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

func timePhrase(s string) string {
	for _, re := range timePatterns {
		if m := re.FindString(s); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func documentID(s, kind string) string {
	for _, m := range docIDRe.FindAllStringSubmatch(s, -1) {
		if strings.EqualFold(m[1], kind) {
			return m[2]
		}
	}
	return ""
}

// remainder removes the first case-insensitive occurrence of phrase.
func remainder(s, phrase string) string {
	if phrase == "" {
		return strings.TrimSpace(s)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	loc := re.FindStringIndex(s)
	if loc == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:loc[0]] + s[loc[1]:])
}
