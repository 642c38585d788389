package telegram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Bot owns the Bot API client and feeds its updates to a [Handler].
type Bot struct {
	api     *bot.Bot
	handler *Handler
	cfg     shared.TelegramConfig
	logger  *log.Logger
}

// New creates a [Bot]. Extra options are appended after the defaults, so they can replace the server URL
// or HTTP client in tests.
func New(cfg shared.TelegramConfig, h *Handler, logger *log.Logger, extra ...bot.Option) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: telegram token", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	b := &Bot{handler: h, cfg: cfg, logger: shared.WithLogger(logger, "component", "bot")}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.onUpdate),
		bot.WithMessageTextHandler("/start", bot.MatchTypeExact, b.onStart),
		bot.WithErrorsHandler(func(err error) {
			b.logger.Error("bot api error", "err", err)
		}),
	}
	if cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	opts = append(opts, extra...)

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	b.api = api
	return b, nil
}

func (b *Bot) onUpdate(ctx context.Context, api *bot.Bot, u *tgmodels.Update) {
	b.handler.Dispatch(ctx, api, u)
}

func (b *Bot) onStart(ctx context.Context, api *bot.Bot, u *tgmodels.Update) {
	if u.Message != nil {
		b.handler.Start(ctx, api, u.Message)
	}
}

// Poll removes any registered webhook and long-polls for updates until ctx is canceled.
func (b *Bot) Poll(ctx context.Context) error {
	if _, err := b.api.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn("failed to delete webhook before polling", "err", err)
	}
	b.logger.Info("polling for updates")
	b.api.Start(ctx)
	return nil
}

// Webhook registers the webhook URL with Telegram and starts the update workers.
//
// The returned handler accepts deliveries; mount it with the HTTP server. Workers stop when ctx is canceled.
func (b *Bot) Webhook(ctx context.Context) (http.Handler, error) {
	if b.cfg.WebhookURL == "" {
		return nil, fmt.Errorf("%w: telegram.webhook_url", shared.ErrMissingConfig)
	}

	ok, err := b.api.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         b.cfg.WebhookURL,
		SecretToken: b.cfg.WebhookSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: set webhook: %w", shared.ErrAPIRequest, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: set webhook was not accepted", shared.ErrAPIRequest)
	}
	b.logger.Info("webhook registered", "url", b.cfg.WebhookURL)

	go b.api.StartWebhook(ctx)
	return b.api.WebhookHandler(), nil
}
