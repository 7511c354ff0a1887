package telegram

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	// SendMarkdown sends text formatted as MarkdownV2; the caller escapes it.
	SendMarkdown(chatID int64, text string) (int, error)
}
