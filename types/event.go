package types

// MessageEvent is an inbound text-message event from the chat gateway.
// The gateway resolves member/permission context before forwarding, so the
// bot never talks to the platform API for authorization data.
type MessageEvent struct {
	Type             string   `json:"type"`
	MessageID        string   `json:"message_id"`
	ChannelID        string   `json:"channel_id"`
	GuildID          string   `json:"guild_id"`
	GuildName        string   `json:"guild_name,omitempty"`
	ActorID          string   `json:"user_id"`
	ActorName        string   `json:"user_name,omitempty"`
	Content          string   `json:"content"`
	MentionedUserIDs []string `json:"mentioned_user_ids,omitempty"`
	ActorRoleIDs     []string `json:"actor_role_ids,omitempty"`
	ManageRoles      bool     `json:"can_manage_roles,omitempty"`
	ManageMessages   bool     `json:"can_manage_messages,omitempty"`
	Timestamp        int64    `json:"timestamp"`
}

// Reply is an outbound message produced by a command handler. Embed is
// optional; when set the gateway renders it as a structured card.
type Reply struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content,omitempty"`
	Embed     *Embed `json:"embed,omitempty"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// Embed is a minimal structured card: title, body and optional fields.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      string       `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed colors, matching the palette the bot has always used.
const (
	ColorGreen   = 0x57F287
	ColorRed     = 0xED4245
	ColorYellow  = 0xFEE75C
	ColorBlurple = 0x5865F2
	ColorGray    = 0x95A5A6
)
