package notify

import (
	"github.com/gh-nvat/gitops-deployctl/src/pkg/models"
)

// Chain is one credential field's resolution chain: an explicit override,
// else the environment-class-specific value, else the global fallback,
// else absent. Fields resolve independently of one another.
type Chain struct {
	Override   string
	ClassValue string
	Fallback   string
}

// Resolve returns the first non-empty link, or "" when all are absent.
func (c Chain) Resolve() string {
	if c.Override != "" {
		return c.Override
	}
	if c.ClassValue != "" {
		return c.ClassValue
	}
	return c.Fallback
}

// RouterInputs carry one chain per credential field.
type RouterInputs struct {
	BotToken Chain
	ChatID   Chain
	ThreadID Chain
}

// Route resolves the notification target for a run. A partially resolved
// target (token without chat id, or vice versa) is valid but unusable; the
// caller must check Usable() and skip delivery rather than error.
func Route(in RouterInputs) models.NotificationTarget {
	return models.NotificationTarget{
		BotToken: in.BotToken.Resolve(),
		ChatID:   in.ChatID.Resolve(),
		ThreadID: in.ThreadID.Resolve(),
	}
}
