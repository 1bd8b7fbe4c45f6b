package models

// WebhookMessage is the JSON body posted to a configured webhook endpoint.
// The shape follows the Discord-compatible webhook format: a plain content
// string for role mentions, a display identity, and a single embed.
type WebhookMessage struct {
	Content         string          `json:"content"`
	Username        string          `json:"username,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	Embeds          []Embed         `json:"embeds"`
	AllowedMentions AllowedMentions `json:"allowed_mentions"`
}

// AllowedMentions restricts which mention types the endpoint may expand.
type AllowedMentions struct {
	Parse []string `json:"parse"`
}

// Embed is the structured message block inside a webhook message.
type Embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Timestamp   string      `json:"timestamp"`
	Footer      EmbedFooter `json:"footer"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// NotificationPayload binds a formatted webhook message to its target
// endpoint. It exists only for the duration of one dispatch call.
type NotificationPayload struct {
	Endpoint string
	Message  WebhookMessage
}
