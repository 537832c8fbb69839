package models

// NotificationTarget is the resolved credential triple for a chat channel.
// Each field resolves independently; a present BotToken with an absent
// ChatID is a valid but unusable partial result.
type NotificationTarget struct {
	BotToken string `json:"-"`
	ChatID   string `json:"chatId,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
}

// Usable reports whether the target can actually be delivered to. Callers
// must skip (not error) when a target is not usable.
func (t NotificationTarget) Usable() bool {
	return t.BotToken != "" && t.ChatID != ""
}
