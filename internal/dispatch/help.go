package dispatch

import (
	"context"
	"sort"

	"github.com/hal9000y/mailvoice/internal/command"
)

var helpTopics = map[string]string{
	"send":       `To send an email, say "send email to [recipient]" or "email [recipient] about [subject]"`,
	"compose":    `To compose an email, say "compose email" or "write new email"`,
	"search":     `To search emails, say "search emails for [query]" or "find emails from [sender]"`,
	"templates":  `To manage templates, say "show templates", "create template", or "use template [name]"`,
	"campaigns":  `To manage campaigns, say "show campaigns", "create campaign", or "send campaign [id]"`,
	"automation": `To manage automation, say "show automation rules" or "create automation"`,
}

const helpHeader = "Email Voice Commands:\n\n"

const helpCatalogue = `Available commands:
• Compose: "compose email", "write email"
• Send: "send email to [recipient]", "email [recipient]"
• Search: "search emails", "find emails from [sender]"
• Manage: "mark as read", "star email", "delete email"
• Folders: "show folders", "create folder", "move to folder"
• Templates: "show templates", "create template", "use template"
• Campaigns: "show campaigns", "create campaign", "send campaign"
• Analytics: "email stats", "email analytics", "email report"
• Business: "send invoice email", "send quote email"
• Automation: "schedule email", "create automation"

Say "help with email [topic]" for specific guidance, e.g. "help with email templates".`

// HelpTopics lists the topics with dedicated help text.
func HelpTopics() []string {
	topics := make([]string, 0, len(helpTopics))
	for t := range helpTopics {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// HelpText returns the help for topic, or the full catalogue when topic is
// empty or unknown.
func HelpText(topic string) string {
	if text, ok := helpTopics[topic]; ok {
		return helpHeader + text
	}
	return helpHeader + helpCatalogue
}

func (d *Dispatcher) emailHelp(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	return succeed(HelpText(p.Topic), TagShowHelp, Help{Type: "email_help", Topic: p.Topic})
}
