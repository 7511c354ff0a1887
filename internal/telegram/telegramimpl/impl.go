package telegramimpl

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/fb-repost-bot/internal/telegram"
	"github.com/orgball2608/fb-repost-bot/pkg/config"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"go.uber.org/fx"
)

var ErrDisabled = errors.New("telegram notifications are disabled")

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
}

func New(opts Opts) (*TelegramImpl, error) {
	if opts.Config.Telegram.Token == "" {
		return nil, ErrDisabled
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: opts.Logger.WithComponent("Telegram"),
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)
