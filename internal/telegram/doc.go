// Package telegram connects the pipeline to the Telegram Bot API through go-telegram/bot.
//
// [Handler] holds the conversation rules and depends only on [Sender], so it runs against a fake in tests.
// [Bot] owns the API client and runs it either by long polling ([Bot.Poll]) or behind the HTTP server
// ([Bot.Webhook]).
//
// A text message gets a short progress notice, which is deleted once the pipeline has answered. Track replies
// use the configured Markdown dialect and never show link previews. An inline query carrying a supported link
// gets one article; anything else gets an empty answer.
package telegram
