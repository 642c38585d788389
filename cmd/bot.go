package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/multilink/internal/server"
	"github.com/desertthunder/multilink/internal/telegram"
	"github.com/urfave/cli/v3"
)

// newBot validates the config and wires the pipeline into a Telegram bot.
func (r *Runner) newBot() (*telegram.Bot, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	engine, err := r.pipeline()
	if err != nil {
		return nil, err
	}

	handler := telegram.NewHandler(engine, engine.Formatter().Dialect(), r.logger)
	return telegram.New(r.config.Telegram, handler, r.logger)
}

// Bot runs the bot with long polling until interrupted.
func (r *Runner) Bot(ctx context.Context, cmd *cli.Command) error {
	b, err := r.newBot()
	if err != nil {
		return err
	}

	r.logger.Info("starting bot", "mode", "polling", "version", version)
	if err := b.Poll(ctx); err != nil {
		return fmt.Errorf("polling stopped: %w", err)
	}
	r.logger.Info("bot stopped")
	return nil
}

// Webhook registers the webhook and serves updates until interrupted.
func (r *Runner) Webhook(ctx context.Context, cmd *cli.Command) error {
	b, err := r.newBot()
	if err != nil {
		return err
	}

	updates, err := b.Webhook(ctx)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	router := server.NewRouter(r.logger,
		server.NewHealthHandler(version),
		server.NewWebhookHandler(r.config.Telegram.WebhookPath, r.config.Telegram.WebhookSecret, updates),
	)

	r.logger.Info("starting bot", "mode", "webhook", "addr", addr, "path", r.config.Telegram.WebhookPath, "version", version)
	return server.New(addr, router, r.logger).Run(ctx)
}
