package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/groblegark/kofid/internal/model"
)

// Renderer builds webhook bodies for supporter events and summaries. The
// optional Ko-fi username turns profile references into direct links.
type Renderer struct {
	Username string
}

// ProfileURL returns the configured supporter page, or the generic Ko-fi
// landing page when no username is set.
func (r *Renderer) ProfileURL() string {
	if r.Username != "" {
		return "https://ko-fi.com/" + r.Username
	}
	return "https://ko-fi.com"
}

// eventCopy holds the per-kind title and subtitle shown in notifications.
var eventCopy = map[model.EventKind]struct {
	Title    string
	Subtitle string
}{
	model.KindDonation:            {"New supporter on Ko-fi ☕", "Someone just bought you a coffee."},
	model.KindSubscriptionStart:   {"New subscription 🎉", "A supporter started a monthly subscription."},
	model.KindSubscriptionRenewal: {"Subscription renewed 🔁", "A supporter renewed their monthly subscription."},
	model.KindCancellation:        {"Subscription cancelled 🪫", "A supporter cancelled their subscription."},
	model.KindRefund:              {"Payment refunded ⚠️", "A payment was refunded."},
}

// hasMessage reports whether the payload carries a displayable supporter
// message. Ko-fi sends the literal string "null" for absent messages.
func hasMessage(p *model.Payload) bool {
	return p.Message != "" && p.Message != "null"
}

// RenderEvent renders a classified event into both webhook bodies.
func (r *Renderer) RenderEvent(p *model.Payload, kind model.EventKind, now time.Time) (*RichMessage, *LegacyMessage) {
	return r.renderEventRich(p, kind), r.renderEventLegacy(p, kind, now)
}

func (r *Renderer) renderEventRich(p *model.Payload, kind model.EventKind) *RichMessage {
	text := eventCopy[kind]

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", text.Subtitle)
	fmt.Fprintf(&b, "**From:** %s\n", p.FromName)
	fmt.Fprintf(&b, "**Type:** %s\n", p.Type)
	fmt.Fprintf(&b, "**Amount:** %s %s\n", p.Amount, p.Currency)
	if p.TierName != "" {
		fmt.Fprintf(&b, "**Tier:** %s\n", p.TierName)
	}
	if hasMessage(p) {
		fmt.Fprintf(&b, "**Message:** %s\n", p.Message)
	}
	fmt.Fprintf(&b, "[Ko-fi](%s)", r.ProfileURL())

	return &RichMessage{
		Flags: FlagComponentsV2,
		Components: []Component{{
			Type: ComponentContainer,
			Components: []Component{
				{
					Type:       ComponentSection,
					Components: []Component{{Type: ComponentText, Content: "## " + text.Title}},
					Accessory:  &Component{Type: ComponentThumbnail, Media: &Media{URL: KofiImageURL}},
				},
				{Type: ComponentText, Content: b.String()},
			},
		}},
	}
}

func (r *Renderer) renderEventLegacy(p *model.Payload, kind model.EventKind, now time.Time) *LegacyMessage {
	text := eventCopy[kind]

	fields := []EmbedField{
		{Name: "From", Value: p.FromName, Inline: true},
		{Name: "Type", Value: p.Type, Inline: true},
		{Name: "Amount", Value: fmt.Sprintf("%s %s", p.Amount, p.Currency), Inline: true},
	}
	if p.TierName != "" {
		fields = append(fields, EmbedField{Name: "Tier", Value: p.TierName, Inline: true})
	}
	if hasMessage(p) {
		fields = append(fields, EmbedField{Name: "Message", Value: p.Message})
	}

	var url string
	if r.Username != "" {
		url = r.ProfileURL()
	}

	return &LegacyMessage{
		Embeds: []Embed{{
			Author:    &EmbedAuthor{Name: "Ko-fi", IconURL: KofiImageURL},
			Thumbnail: &Media{URL: KofiImageURL},
			Title:     text.Title,
			URL:       url,
			Color:     TierColor(p.TierName),
			Fields:    fields,
			Footer:    &EmbedFooter{Text: "Thank you for supporting us!", IconURL: KofiImageURL},
			Timestamp: now.UTC().Format(time.RFC3339),
		}},
	}
}

// FormatTimeUntil renders the time remaining until endsAt as a compact
// human-readable string: "{days}d {hours}h", "{hours}h", or "{minutes}min".
// Anything at or past the deadline renders as "Expired".
func FormatTimeUntil(endsAt, now time.Time) string {
	remaining := endsAt.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}
	days := int(remaining / (24 * time.Hour))
	hours := int(remaining % (24 * time.Hour) / time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dmin", int(remaining/time.Minute))
}
