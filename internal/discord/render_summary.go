package discord

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/groblegark/kofid/internal/model"
)

// Row limits for the two summary renditions. The legacy embed is kept short
// because embed descriptions have a much tighter size cap.
const (
	richSubscriptionRows   = 15
	legacySubscriptionRows = 10
	richDonorRows          = 10
	legacyDonorRows        = 5
	richCancellationRows   = 5
)

// RenderSummary renders the ledger into both summary bodies.
func (r *Renderer) RenderSummary(l *model.Ledger, now time.Time) (*RichMessage, *LegacyMessage) {
	return r.renderSummaryRich(l, now), r.renderSummaryLegacy(l, now)
}

// sortedSubscriptions returns the subscription entries ordered by supporter
// name so that summaries are deterministic.
func sortedSubscriptions(l *model.Ledger) []string {
	names := make([]string, 0, len(l.Subscriptions))
	for name := range l.Subscriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// activeTiers returns tier labels with a positive count, ordered by label.
func activeTiers(l *model.Ledger) []string {
	tiers := make([]string, 0, len(l.TierCounts))
	for tier, n := range l.TierCounts {
		if n > 0 {
			tiers = append(tiers, tier)
		}
	}
	sort.Strings(tiers)
	return tiers
}

func (r *Renderer) renderSummaryRich(l *model.Ledger, now time.Time) *RichMessage {
	lines := []string{"## 📊 Ko-fi summary", "---"}

	lines = append(lines, fmt.Sprintf("**Active subscriptions:** %d", l.ActiveSubscribers()))
	for _, tier := range activeTiers(l) {
		lines = append(lines, fmt.Sprintf("  • %s: %d", tier, l.TierCounts[tier]))
	}

	names := sortedSubscriptions(l)
	if len(names) > 0 {
		lines = append(lines, "", "**Per supporter (time remaining):**")
		shown := names
		if len(shown) > richSubscriptionRows {
			shown = shown[:richSubscriptionRows]
		}
		for _, name := range shown {
			sub := l.Subscriptions[name]
			lines = append(lines, fmt.Sprintf("  • %s (%s) → %s", name, sub.Label(), FormatTimeUntil(sub.EndsAt, now)))
		}
		if len(names) > richSubscriptionRows {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(names)-richSubscriptionRows))
		}
	}

	donors := lastReversed(l.Donors, richDonorRows)
	if len(donors) > 0 {
		lines = append(lines, "", "**Recent donations (one-time):**")
		for _, d := range donors {
			lines = append(lines, fmt.Sprintf("  • %s: %s %s", d.FromName, d.Amount, d.Currency))
		}
	}

	cancellations := lastReversed(l.Cancellations, richCancellationRows)
	if len(cancellations) > 0 {
		lines = append(lines, "", "**Recent cancellations:**")
		for _, c := range cancellations {
			lines = append(lines, fmt.Sprintf("  • %s (%s)", c.FromName, c.Tier))
		}
	}

	if len(l.Refunds) > 0 {
		lines = append(lines, "", "**⚠️ Pending refunds:**")
		for _, ref := range l.Refunds {
			lines = append(lines, fmt.Sprintf("  • %s: %s %s", ref.FromName, ref.Amount, ref.Currency))
		}
	}

	return &RichMessage{
		Flags: FlagComponentsV2,
		Components: []Component{{
			Type: ComponentContainer,
			Components: []Component{
				{
					Type:       ComponentSection,
					Components: []Component{{Type: ComponentText, Content: "Supporter summary"}},
					Accessory:  &Component{Type: ComponentThumbnail, Media: &Media{URL: KofiImageURL}},
				},
				{Type: ComponentText, Content: strings.Join(lines, "\n")},
			},
		}},
	}
}

func (r *Renderer) renderSummaryLegacy(l *model.Ledger, now time.Time) *LegacyMessage {
	var lines []string

	lines = append(lines, fmt.Sprintf("**Active subscriptions:** %d", l.ActiveSubscribers()))
	for _, tier := range activeTiers(l) {
		lines = append(lines, fmt.Sprintf("• %s: %d", tier, l.TierCounts[tier]))
	}

	names := sortedSubscriptions(l)
	if len(names) > 0 {
		lines = append(lines, "\n**Per supporter:**")
		if len(names) > legacySubscriptionRows {
			names = names[:legacySubscriptionRows]
		}
		for _, name := range names {
			sub := l.Subscriptions[name]
			lines = append(lines, fmt.Sprintf("• %s (%s) → %s", name, sub.Label(), FormatTimeUntil(sub.EndsAt, now)))
		}
	}

	donors := lastReversed(l.Donors, legacyDonorRows)
	if len(donors) > 0 {
		lines = append(lines, "\n**Recent donations:**")
		for _, d := range donors {
			lines = append(lines, fmt.Sprintf("• %s: %s %s", d.FromName, d.Amount, d.Currency))
		}
	}

	description := strings.Join(lines, "\n")
	if description == "**Active subscriptions:** 0" {
		description = "No data yet."
	}

	return &LegacyMessage{
		Embeds: []Embed{{
			Title:       "📊 Ko-fi summary",
			Description: description,
			Color:       ColorDefault,
			Thumbnail:   &Media{URL: KofiImageURL},
			Timestamp:   now.UTC().Format(time.RFC3339),
		}},
	}
}

// lastReversed returns up to n trailing elements of s in reverse order, so
// the most recent entry comes first.
func lastReversed[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	out := make([]T, 0, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		out = append(out, s[i])
	}
	return out
}
