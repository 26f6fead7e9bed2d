// Package discord renders supporter events into Discord webhook payloads and
// delivers them. Every message is rendered twice: a rich components-v2 body
// and a legacy embed body the dispatcher falls back to when the sink rejects
// the rich shape.
package discord

// KofiImageURL is the Ko-fi brand symbol used for thumbnails and icons.
const KofiImageURL = "https://storage.ko-fi.com/cdn/brandasset/v2/kofi_symbol.png"

// FlagComponentsV2 marks a webhook body as using the components-v2 layout.
const FlagComponentsV2 = 32768

// Components-v2 component types.
const (
	ComponentText      = 10
	ComponentThumbnail = 11
	ComponentSection   = 9
	ComponentContainer = 17
)

// RichMessage is the components-v2 webhook body.
type RichMessage struct {
	Flags      int         `json:"flags"`
	Components []Component `json:"components"`
}

// Component is one node of a components-v2 tree. Only the fields relevant
// to the component's type are populated.
type Component struct {
	Type       int         `json:"type"`
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
	Accessory  *Component  `json:"accessory,omitempty"`
	Media      *Media      `json:"media,omitempty"`
}

// Media references an image by URL.
type Media struct {
	URL string `json:"url"`
}

// LegacyMessage is the classic embed webhook body.
type LegacyMessage struct {
	Embeds []Embed `json:"embeds"`
}

// Embed is a classic Discord embed.
type Embed struct {
	Author      *EmbedAuthor `json:"author,omitempty"`
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *Media       `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedAuthor is the author line of an embed.
type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedField is a single name/value pair in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// Tier colors for legacy embeds. Unrecognized or absent tiers use
// ColorDefault.
const (
	ColorBronze   = 0xCD7F32
	ColorSilver   = 0x797979
	ColorGold     = 0xFFC530
	ColorPlatinum = 0x2ED5FF
	ColorDefault  = 0x9B59B6
)

// TierColor maps a tier name to its embed color.
func TierColor(tier string) int {
	switch tier {
	case "Bronze":
		return ColorBronze
	case "Silver":
		return ColorSilver
	case "Gold":
		return ColorGold
	case "Platinum":
		return ColorPlatinum
	default:
		return ColorDefault
	}
}
