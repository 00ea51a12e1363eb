package command

import (
	"fmt"
	"strings"
)

// Entry maps a spoken phrase to an action and the parameters that action needs.
type Entry struct {
	Phrase string   `json:"phrase"`
	Action ActionID `json:"action"`
	Params []Param  `json:"params,omitempty"`
	Topic  string   `json:"topic,omitempty"`
}

func e(phrase string, action ActionID, params ...Param) Entry {
	return Entry{Phrase: phrase, Action: action, Params: params}
}

// Declaration order is the partial-match priority: the first entry whose phrase
// overlaps the utterance wins, so longer phrases that share a prefix with a
// shorter one are declared first.
var primaryEntries = []Entry{
	e("compose email", Compose),
	e("write email", Compose),
	e("new email", Compose),
	e("send email to", Send, ParamRecipient),
	e("send email", Send, ParamRecipient),
	e("reply to email", Reply, ParamEmailID),
	e("reply to this", Reply, ParamEmailID),
	e("forward email", Forward, ParamEmailID),
	e("forward this", Forward, ParamEmailID),
	e("show emails", ShowEmails),
	e("show my emails", ShowEmails),
	e("check inbox", ShowEmails),
	e("mark as unread", MarkUnread, ParamEmailID),
	e("mark as read", MarkRead, ParamEmailID),
	e("unstar email", UnstarEmail, ParamEmailID),
	e("star email", StarEmail, ParamEmailID),
	e("delete email", DeleteEmail, ParamEmailID),
	e("remove email", DeleteEmail, ParamEmailID),
	e("archive email", ArchiveEmail, ParamEmailID),
	e("search from", SearchByFrom, ParamSender),
	e("find emails from", SearchByFrom, ParamSender),
	e("search subject", SearchBySubject, ParamSubject),
	e("find emails about", SearchBySubject, ParamSubject),
	e("search attachments", SearchAttachments, ParamQuery),
	e("find attachments", SearchAttachments, ParamQuery),
	e("search emails", SearchEmails, ParamQuery),
	e("find emails", SearchEmails, ParamQuery),
	e("show folders", ShowFolders),
	e("list folders", ShowFolders),
	e("create folder", CreateFolder, ParamFolderName),
	e("new folder", CreateFolder, ParamFolderName),
	e("delete folder", DeleteFolder, ParamFolderName),
	e("remove folder", DeleteFolder, ParamFolderName),
	e("move to folder", MoveToFolder, ParamEmailID, ParamFolderName),
	e("show templates", ShowTemplates),
	e("list templates", ShowTemplates),
	e("create template", CreateTemplate, ParamTemplateName),
	e("new template", CreateTemplate, ParamTemplateName),
	e("use template", UseTemplate, ParamTemplateName),
	e("delete template", DeleteTemplate, ParamTemplateName),
	e("create campaign", CreateCampaign, ParamCampaignName),
	e("new campaign", CreateCampaign, ParamCampaignName),
	e("send campaign", SendCampaign, ParamCampaignID),
	e("show campaigns", ShowCampaigns),
	e("list campaigns", ShowCampaigns),
	e("campaign stats", CampaignStats, ParamCampaignID),
	e("pause campaign", PauseCampaign, ParamCampaignID),
	e("resume campaign", ResumeCampaign, ParamCampaignID),
	e("email analytics", EmailAnalytics),
	e("email stats", EmailStats),
	e("email statistics", EmailStats),
	e("email metrics", EmailMetrics),
	e("email performance", EmailPerformance),
	e("email report", EmailReport),
	e("client email history", ClientEmailHistory, ParamClientID),
	e("email activity", EmailActivity),
	e("schedule email", ScheduleEmail, ParamRecipient, ParamScheduledTime),
	e("create automation", CreateAutomation, ParamRuleName),
	e("new automation", CreateAutomation, ParamRuleName),
	e("show automation", ShowAutomationRules),
	e("list automation", ShowAutomationRules),
	e("show follow ups", ShowFollowUps),
	e("list follow ups", ShowFollowUps),
	e("send invoice email", SendInvoiceEmail, ParamInvoiceID, ParamRecipient),
	e("send invoice", SendInvoiceEmail, ParamInvoiceID, ParamRecipient),
	e("email invoice", SendInvoiceEmail, ParamInvoiceID, ParamRecipient),
	e("send quote email", SendQuoteEmail, ParamQuoteID, ParamRecipient),
	e("send quote", SendQuoteEmail, ParamQuoteID, ParamRecipient),
	e("email quote", SendQuoteEmail, ParamQuoteID, ParamRecipient),
	e("send payment reminder", SendPaymentReminder, ParamInvoiceID),
	e("payment reminder", SendPaymentReminder, ParamInvoiceID),
	e("email settings", EmailSettings),
	e("manage signature", ManageSignature),
	e("email signature", ManageSignature),
	e("notification settings", NotificationSettings),
	e("email help", EmailHelp),
	e("help with email", EmailHelp),
}

var searchEntries = []Entry{
	e("search", SearchEmails, ParamQuery),
	e("find", SearchEmails, ParamQuery),
	e("look for", SearchEmails, ParamQuery),
	e("locate", SearchEmails, ParamQuery),
}

// Help phrases never contain "search", "find" or "to": those words trigger
// heuristic overrides before the help fallback is reached.
var helpEntries = []Entry{
	{Phrase: "help sending email", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "send"},
	{Phrase: "help composing email", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "compose"},
	{Phrase: "email lookup help", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "search"},
	{Phrase: "email template help", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "templates"},
	{Phrase: "email campaign help", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "campaigns"},
	{Phrase: "email rules help", Action: EmailHelp, Params: []Param{ParamTopic}, Topic: "automation"},
}

// Table is the read-only registry of supported phrases.
type Table struct {
	primary []Entry
	search  []Entry
	help    []Entry
	index   map[string]Entry
}

// DefaultTable returns the built-in command table.
func DefaultTable() *Table {
	t, err := NewTable(primaryEntries, searchEntries, helpEntries)
	if err != nil {
		panic(fmt.Sprintf("invalid builtin command table: %v", err))
	}
	return t
}

// NewTable builds a table from the three phrase lists. Phrases must be lower-case,
// trimmed and unique within their list.
func NewTable(primary, search, help []Entry) (*Table, error) {
	t := &Table{
		primary: append([]Entry(nil), primary...),
		search:  append([]Entry(nil), search...),
		help:    append([]Entry(nil), help...),
		index:   make(map[string]Entry, len(primary)),
	}

	for name, list := range map[string][]Entry{"primary": t.primary, "search": t.search, "help": t.help} {
		seen := make(map[string]struct{}, len(list))
		for _, entry := range list {
			if entry.Phrase == "" || entry.Phrase != strings.ToLower(strings.TrimSpace(entry.Phrase)) {
				return nil, fmt.Errorf("%s table: phrase %q must be lower-case and trimmed", name, entry.Phrase)
			}
			if !entry.Action.Valid() {
				return nil, fmt.Errorf("%s table: phrase %q has unknown action %q", name, entry.Phrase, entry.Action)
			}
			if _, dup := seen[entry.Phrase]; dup {
				return nil, fmt.Errorf("%s table: duplicate phrase %q", name, entry.Phrase)
			}
			seen[entry.Phrase] = struct{}{}
		}
	}

	for _, entry := range t.primary {
		t.index[entry.Phrase] = entry
	}

	return t, nil
}

// Lookup finds a primary-table entry by exact phrase.
func (t *Table) Lookup(phrase string) (Entry, bool) {
	entry, ok := t.index[phrase]
	return entry, ok
}

// Primary returns the primary entries in declaration order.
func (t *Table) Primary() []Entry {
	return append([]Entry(nil), t.primary...)
}

// All returns every phrase of the three tables keyed by phrase. When a phrase
// appears in more than one table the primary entry is kept.
func (t *Table) All() map[string]Entry {
	all := make(map[string]Entry, len(t.primary)+len(t.search)+len(t.help))
	for _, list := range [][]Entry{t.help, t.search, t.primary} {
		for _, entry := range list {
			all[entry.Phrase] = entry
		}
	}
	return all
}

// Entries returns every entry of the three tables: primary, search, then help.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.primary)+len(t.search)+len(t.help))
	out = append(out, t.primary...)
	out = append(out, t.search...)
	return append(out, t.help...)
}
