package notify

import "encoding/json"

const (
	// AppName titles notifications whose payload carries no title of its own.
	AppName = "Bet Tracker"

	DefaultBody  = "You have a new notification"
	DefaultIcon  = "/static/icons/icon-192.png"
	DefaultBadge = "/static/icons/icon-192.png"
	DefaultURL   = "/"
)

// Payload is the JSON body of a push message. Every field is optional; the
// zero value still renders a usable notification after Normalize.
type Payload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Normalize fills in the documented defaults for absent fields.
func (p Payload) Normalize() Payload {
	if p.Title == "" {
		p.Title = AppName
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.Badge == "" {
		p.Badge = DefaultBadge
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	return p
}

// Parse decodes a raw push body. A message is never dropped for not being
// JSON: unparsable input becomes a minimal payload with the app name as
// title and the raw text as body.
func Parse(raw []byte) Payload {
	var p Payload
	if len(raw) > 0 && json.Unmarshal(raw, &p) != nil {
		p = Payload{Title: AppName, Body: string(raw)}
	}
	return p.Normalize()
}
