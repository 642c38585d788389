package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/multilink/internal/formatter"
	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/services"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/desertthunder/multilink/internal/tasks"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// inlineCacheSeconds is how long Telegram may cache an inline answer for the same query.
const inlineCacheSeconds = 300

// Sender is the subset of the Bot API the handler talks to. [*bot.Bot] satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerInlineQuery(ctx context.Context, params *bot.AnswerInlineQueryParams) (bool, error)
}

// Handler turns Telegram updates into pipeline runs and replies.
type Handler struct {
	pipeline tasks.Pipeline
	dialect  formatter.Dialect
	logger   *log.Logger
}

// NewHandler creates a [Handler]. Replies of kind track are sent with the parse mode of dialect.
func NewHandler(pipeline tasks.Pipeline, dialect formatter.Dialect, logger *log.Logger) *Handler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Handler{
		pipeline: pipeline,
		dialect:  dialect,
		logger:   shared.WithLogger(logger, "component", "telegram"),
	}
}

// Dispatch routes one update to the message or inline-query path.
func (h *Handler) Dispatch(ctx context.Context, s Sender, u *tgmodels.Update) {
	switch {
	case u == nil:
	case u.InlineQuery != nil:
		h.Inline(ctx, s, u.InlineQuery)
	case u.Message != nil:
		h.Message(ctx, s, u.Message)
	}
}

// Start answers /start with the welcome text.
func (h *Handler) Start(ctx context.Context, s Sender, msg *tgmodels.Message) {
	h.send(ctx, s, msg, models.Reply{Kind: models.ReplyWelcome, Text: tasks.WelcomeMessage})
}

// Message handles one inbound text message.
func (h *Handler) Message(ctx context.Context, s Sender, msg *tgmodels.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if name, ok := command(text); ok {
		if name == "start" {
			h.Start(ctx, s, msg)
		}
		return
	}

	logger := shared.WithLogger(h.logger, "chat", msg.Chat.ID, "message", msg.ID)
	logger.Debug("message received", "len", len(text))

	var progress *tgmodels.Message
	if _, ok := services.FirstLink(text); ok {
		var err error
		progress, err = s.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          msg.Chat.ID,
			Text:            tasks.ProgressMessage,
			ReplyParameters: &tgmodels.ReplyParameters{MessageID: msg.ID},
		})
		if err != nil {
			logger.Warn("failed to send progress message", "err", err)
		}
	}

	reply := h.pipeline.Handle(ctx, text)

	if progress != nil {
		if _, err := s.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: progress.ID}); err != nil {
			logger.Warn("failed to delete progress message", "err", err)
		}
	}

	h.send(ctx, s, msg, reply)
	logger.Info("reply sent", "kind", reply.Kind)
}

// Inline answers an inline query with at most one article.
func (h *Handler) Inline(ctx context.Context, s Sender, q *tgmodels.InlineQuery) {
	logger := shared.WithLogger(h.logger, "inline_query", q.ID)
	results := []tgmodels.InlineQueryResult{}

	if query := strings.TrimSpace(q.Query); query != "" {
		reply := h.pipeline.Handle(ctx, query)
		if article := h.article(reply); article != nil {
			results = append(results, article)
		}
		logger.Debug("inline query resolved", "kind", reply.Kind)
	}

	_, err := s.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: q.ID,
		Results:       results,
		CacheTime:     inlineCacheSeconds,
	})
	if err != nil {
		logger.Warn("failed to answer inline query", "err", err)
	}
}

func (h *Handler) article(reply models.Reply) tgmodels.InlineQueryResult {
	if reply.Kind != models.ReplyTrack || reply.Track == nil {
		return nil
	}

	found := 0
	for _, r := range reply.Results {
		if r.Found() {
			found++
		}
	}

	return &tgmodels.InlineQueryResultArticle{
		ID:          shared.GenerateID(),
		Title:       fmt.Sprintf("%s - %s", reply.Track.Performer, reply.Track.Title),
		Description: fmt.Sprintf("Links on %d other services", found),
		InputMessageContent: &tgmodels.InputTextMessageContent{
			MessageText:        reply.Text,
			ParseMode:          h.dialect.ParseMode(),
			LinkPreviewOptions: noPreview(),
		},
	}
}

func (h *Handler) send(ctx context.Context, s Sender, msg *tgmodels.Message, reply models.Reply) {
	params := &bot.SendMessageParams{
		ChatID:             msg.Chat.ID,
		Text:               reply.Text,
		ReplyParameters:    &tgmodels.ReplyParameters{MessageID: msg.ID},
		LinkPreviewOptions: noPreview(),
	}
	if reply.Markdown() {
		params.ParseMode = h.dialect.ParseMode()
	}

	_, err := s.SendMessage(ctx, params)
	if err != nil && params.ParseMode != "" {
		h.logger.Warn("markup rejected, resending as plain text", "chat", msg.Chat.ID, "err", err)
		params.ParseMode = ""
		if reply.Plain != "" {
			params.Text = reply.Plain
		}
		_, err = s.SendMessage(ctx, params)
	}
	if err != nil {
		h.logger.Error("failed to send reply", "chat", msg.Chat.ID, "kind", reply.Kind, "err", err)
	}
}

func noPreview() *tgmodels.LinkPreviewOptions {
	disabled := true
	return &tgmodels.LinkPreviewOptions{IsDisabled: &disabled}
}

// command reports the command name of text, without the slash or a trailing @botname.
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), true
}
