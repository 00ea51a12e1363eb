package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hal9000y/mailvoice/internal/mail"
	"github.com/hal9000y/mailvoice/internal/store"
)

const (
	analyticsWindow = 30 * 24 * time.Hour
	recentActivity  = 10
	topRecipients   = 5
)

// Kinds that count as a delivered message.
var deliveredKinds = map[string]bool{
	mail.ActivitySent:     true,
	mail.ActivityInvoice:  true,
	mail.ActivityQuote:    true,
	mail.ActivityReminder: true,
}

// Analytics aggregates the activity log over the last 30 days.
type Analytics struct {
	activity activityLog
	now      func() time.Time
}

func NewAnalytics(activity activityLog, opts ...Option) *Analytics {
	o := newOptions(opts)
	return &Analytics{activity: activity, now: o.now}
}

func (a *Analytics) GetDashboardAnalytics(ctx context.Context, userID string) (mail.Dashboard, error) {
	since, list, err := a.window(ctx, userID)
	if err != nil {
		return mail.Dashboard{}, err
	}

	recent := list[:min(len(list), recentActivity)]
	return mail.Dashboard{
		Stats:       stats(since, list),
		Performance: performance(since, list),
		Recent:      recent,
	}, nil
}

func (a *Analytics) GetEmailStats(ctx context.Context, userID string) (mail.Stats, error) {
	since, list, err := a.window(ctx, userID)
	if err != nil {
		return mail.Stats{}, err
	}
	return stats(since, list), nil
}

// GetActivityMetrics buckets activity by UTC day and hour of day.
func (a *Analytics) GetActivityMetrics(ctx context.Context, userID string) (mail.ActivityMetrics, error) {
	since, list, err := a.window(ctx, userID)
	if err != nil {
		return mail.ActivityMetrics{}, err
	}

	m := mail.ActivityMetrics{Since: since, Daily: map[string]int{}}
	for _, act := range list {
		ts := act.CreatedAt.UTC()
		m.Daily[ts.Format(time.DateOnly)]++
		m.Hourly[ts.Hour()]++
	}
	return m, nil
}

func (a *Analytics) GetPerformanceMetrics(ctx context.Context, userID string) (mail.Performance, error) {
	since, list, err := a.window(ctx, userID)
	if err != nil {
		return mail.Performance{}, err
	}
	return performance(since, list), nil
}

func (a *Analytics) GenerateEmailReport(ctx context.Context, userID string) (mail.Report, error) {
	since, list, err := a.window(ctx, userID)
	if err != nil {
		return mail.Report{}, err
	}

	counts := map[string]int{}
	for _, act := range list {
		if deliveredKinds[act.Kind] && act.Recipient != "" {
			counts[act.Recipient]++
		}
	}
	top := make([]mail.RecipientCount, 0, len(counts))
	for r, n := range counts {
		top = append(top, mail.RecipientCount{Recipient: r, Count: n})
	}
	slices.SortFunc(top, func(x, y mail.RecipientCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return cmp.Compare(x.Recipient, y.Recipient)
	})

	return mail.Report{
		GeneratedAt:   a.now().UTC(),
		Since:         since,
		Stats:         stats(since, list),
		Performance:   performance(since, list),
		TopRecipients: top[:min(len(top), topRecipients)],
	}, nil
}

func (a *Analytics) window(ctx context.Context, userID string) (time.Time, []mail.Activity, error) {
	since := a.now().UTC().Add(-analyticsWindow)

	list, err := a.activity.Activities(ctx, store.ActivityFilter{UserID: userID, Since: since})
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("activity.Activities failed: %w", err)
	}
	return since, list, nil
}

func stats(since time.Time, list []mail.Activity) mail.Stats {
	s := mail.Stats{Since: since, Total: len(list), ByKind: map[string]int{}}
	for _, act := range list {
		s.ByKind[act.Kind]++
	}
	return s
}

func performance(since time.Time, list []mail.Activity) mail.Performance {
	p := mail.Performance{Since: since}
	for _, act := range list {
		switch {
		case deliveredKinds[act.Kind]:
			p.Sent++
		case act.Kind == mail.ActivitySendFailed:
			p.Failed++
		case act.Kind == mail.ActivityCampaign:
			p.Campaigns++
		}
	}
	if attempts := p.Sent + p.Failed; attempts > 0 {
		p.SuccessRate = percent(p.Sent, attempts)
	}
	return p
}
