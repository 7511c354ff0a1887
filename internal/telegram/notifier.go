package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/eventbus"
	"github.com/orgball2608/fb-repost-bot/pkg/formatter"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
)

const previewLength = 200

// Notifier tells the operator about every post published to a target page.
type Notifier struct {
	client Client
	chatID int64
	logger logger.Logger
}

func NewNotifier(client Client, chatID int64, log logger.Logger) *Notifier {
	return &Notifier{
		client: client,
		chatID: chatID,
		logger: log.WithComponent("TelegramNotifier"),
	}
}

func (n *Notifier) Subscribe(bus *eventbus.Bus) {
	bus.Outgoing.Subscribe("telegram", n.HandleOutgoing)
}

func (n *Notifier) HandleOutgoing(_ context.Context, rec domain.TargetRecord) {
	if _, err := n.client.SendMarkdown(n.chatID, FormatPublished(rec)); err != nil {
		n.logger.Warn("Failed to notify about published post", "post_id", rec.PostID(), "error", err)
	}
}

// FormatPublished renders a MarkdownV2 notification for rec.
func FormatPublished(rec domain.TargetRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Reposted* `%s` to page `%d`",
		formatter.EscapeMarkdownV2(rec.PostID()), rec.TargetPageID)

	post := rec.Original()
	if post.Message != "" {
		sb.WriteString("\n\n")
		sb.WriteString(formatter.EscapeMarkdownV2(formatter.Truncate(post.Message, previewLength)))
	}
	return sb.String()
}
