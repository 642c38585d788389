// Package server is the HTTP side of the bot: webhook delivery and health checks.
//
// # Router
//
// [BasicRouter] implements [Router] over [http.ServeMux]. [BasicRouter.Handle] registers method-specific
// routes and answers other methods with 405. [BasicRouter.Handler] registers a [Handler] the same way, for
// every path from Routes and every method from Methods.
//
// [Middleware] is applied so that the first one passed to Use is the outermost. [NewRouter] installs
// [Recover], [RequestID] and [Logger] in that order.
//
// # Handlers
//
//   - [HealthHandler] serves GET /healthz with a plain "ok"
//   - [WebhookHandler] serves POST on the configured webhook path, checks the secret header, then forwards
//     to the Telegram update handler
//
// # Lifecycle
//
// [Server.Run] blocks until its context is canceled and then drains in-flight requests.
package server
