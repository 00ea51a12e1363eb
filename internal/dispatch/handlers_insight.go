package dispatch

import (
	"context"
	"fmt"

	"github.com/hal9000y/mailvoice/internal/command"
	"github.com/hal9000y/mailvoice/internal/mail"
)

const (
	routeAnalytics  = "/email/analytics"
	routeReports    = "/email/reports"
	routeActivity   = "/email/activity"
	routeAutomation = "/email/automation"
	routeFollowUps  = "/email/follow-ups"
	routeSettings   = "/email/settings"
)

func (d *Dispatcher) emailAnalytics(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	dash, err := call(func() (mail.Dashboard, error) { return d.svc.Analytics.GetDashboardAnalytics(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to get email analytics", err)
	}
	return succeed("Email analytics retrieved", TagShowData, View{Type: "analytics", Route: routeAnalytics, Detail: dash})
}

func (d *Dispatcher) emailStats(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	stats, err := call(func() (mail.Stats, error) { return d.svc.Analytics.GetEmailStats(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to get email stats", err)
	}
	return succeed("Email statistics retrieved", TagShowData, View{Type: "stats", Route: routeAnalytics, Detail: stats})
}

func (d *Dispatcher) emailMetrics(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	m, err := call(func() (mail.ActivityMetrics, error) { return d.svc.Analytics.GetActivityMetrics(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to get email metrics", err)
	}
	return succeed("Email metrics retrieved", TagShowData, View{Type: "metrics", Route: routeAnalytics, Detail: m})
}

func (d *Dispatcher) emailPerformance(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	perf, err := call(func() (mail.Performance, error) { return d.svc.Analytics.GetPerformanceMetrics(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to get email performance", err)
	}
	return succeed("Email performance metrics retrieved", TagShowData, View{Type: "performance", Route: routeAnalytics, Detail: perf})
}

func (d *Dispatcher) emailReport(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	report, err := call(func() (mail.Report, error) { return d.svc.Analytics.GenerateEmailReport(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to generate email report", err)
	}
	return succeed("Email report generated", TagShowData, View{Type: "report", Route: routeReports, Detail: report})
}

// emailActivity shares the activity metrics query with emailMetrics and differs
// only in how the shell presents it.
func (d *Dispatcher) emailActivity(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	m, err := call(func() (mail.ActivityMetrics, error) { return d.svc.Analytics.GetActivityMetrics(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to get email activity", err)
	}
	return succeed("Email activity retrieved", TagShowData, View{Type: "activity", Route: routeActivity, Detail: m})
}

func (d *Dispatcher) scheduleEmail(ctx context.Context, p command.Params, ec ExecutionContext) Envelope {
	if p.Recipient == "" || p.ScheduledTime == "" {
		return inputRequired("Please specify recipient and scheduled time", command.ParamRecipient, command.ParamScheduledTime)
	}

	out := mail.Outgoing{
		To:       []string{p.Recipient},
		Subject:  orDefault(p.Subject, "Scheduled Email"),
		Body:     p.Text(),
		Priority: "normal",
	}

	scheduled, err := call(func() (mail.ScheduledEmail, error) {
		return d.svc.Automation.ScheduleEmail(ctx, ec.UserID, out, p.ScheduledTime)
	})
	if err != nil {
		return failure("Failed to schedule email", err)
	}

	return succeed("Email scheduled for "+p.ScheduledTime, TagEmailScheduled, scheduled)
}

func (d *Dispatcher) createAutomation(_ context.Context, p command.Params, _ ExecutionContext) Envelope {
	if p.RuleName == "" {
		return inputRequired("Please specify an automation rule name", command.ParamRuleName)
	}

	return succeed("Opening automation rule creator...", TagNavigate, Navigation{
		Route:  routeAutomation,
		Params: map[string]string{"action": "create", "ruleName": p.RuleName},
	})
}

func (d *Dispatcher) showAutomationRules(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	rules, err := call(func() ([]mail.AutomationRule, error) { return d.svc.Automation.GetAutomationRules(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to fetch automation rules", err)
	}

	return succeed(fmt.Sprintf("Found %d automation rules", len(rules)), TagShowData, View{
		Type:  "automation_rules",
		Route: routeAutomation,
		Items: rules,
	})
}

func (d *Dispatcher) showFollowUps(ctx context.Context, _ command.Params, ec ExecutionContext) Envelope {
	followUps, err := call(func() ([]mail.FollowUp, error) { return d.svc.Automation.GetFollowUpReminders(ctx, ec.UserID) })
	if err != nil {
		return failure("Failed to fetch follow-ups", err)
	}

	return succeed(fmt.Sprintf("Found %d follow-up reminders", len(followUps)), TagShowData, View{
		Type:  "follow_ups",
		Route: routeFollowUps,
		Items: followUps,
	})
}

func (d *Dispatcher) emailSettings(context.Context, command.Params, ExecutionContext) Envelope {
	return succeed("Opening email settings...", TagNavigate, Navigation{Route: routeSettings})
}

func (d *Dispatcher) manageSignature(context.Context, command.Params, ExecutionContext) Envelope {
	return succeed("Opening signature manager...", TagNavigate, Navigation{Route: routeSettings + "/signature"})
}

func (d *Dispatcher) notificationSettings(context.Context, command.Params, ExecutionContext) Envelope {
	return succeed("Opening notification settings...", TagNavigate, Navigation{Route: routeSettings + "/notifications"})
}
