package models

// Option is one selectable entry in the call-up menu.
type Option struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Field names carried in FormSubmitEvent.Fields.
const (
	FieldPurpose  = "purpose"
	FieldLocation = "location"
)

// MenuRequest asks for the call-up menu to be posted into a channel.
type MenuRequest struct {
	ChannelID string `json:"channel_id"`
}

// SelectionEvent is raised when a member picks an option from the menu.
type SelectionEvent struct {
	UserID    string   `json:"user_id"`
	UserRoles []string `json:"user_roles"`
	OptionKey string   `json:"option_key"`
}

// FormSubmitEvent carries the filled form back, bound to the option key the
// member selected. The key round-trips through the platform adapter unmodified.
type FormSubmitEvent struct {
	UserID    string            `json:"user_id"`
	OptionKey string            `json:"option_key"`
	Fields    map[string]string `json:"fields"`
}

// Submission is one validated form submission. It lives for a single pipeline
// invocation and is never persisted.
type Submission struct {
	UserID    string
	OptionKey string
	Purpose   string
	Location  string
}

// Status identifies the terminal outcome of one trigger event.
type Status string

const (
	StatusMenuPosted    Status = "menu_posted"
	StatusFormPresented Status = "form_presented"
	StatusDispatched    Status = "dispatched"
	StatusUnauthorized  Status = "unauthorized"
	StatusInvalid       Status = "invalid"
	StatusLimited       Status = "limited"
	StatusConfiguration Status = "configuration_error"
	StatusDelivery      Status = "delivery_failed"
)

// Ack is the single user-visible acknowledgment produced per trigger event.
type Ack struct {
	Status            Status `json:"status"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// Menu describes the selectable call-up menu as the platform adapter should
// render it.
type Menu struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Color       int      `json:"color"`
	Placeholder string   `json:"placeholder"`
	Options     []Option `json:"options"`
	ForRoleIDs  []string `json:"for_role_ids,omitempty"`
}

// FormFieldStyle selects the input widget for a form field.
type FormFieldStyle string

const (
	FieldStyleShort     FormFieldStyle = "short"
	FieldStyleParagraph FormFieldStyle = "paragraph"
)

// FormField describes one input of the structured call-up form.
type FormField struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Style       FormFieldStyle `json:"style"`
	Placeholder string         `json:"placeholder"`
	Required    bool           `json:"required"`
	MaxLength   int            `json:"max_length"`
}

// Form describes the structured form bound to a selected option.
type Form struct {
	OptionKey string      `json:"option_key"`
	Title     string      `json:"title"`
	Fields    []FormField `json:"fields"`
}
