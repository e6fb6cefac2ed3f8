package yatgbot

import (
	"context"
	"net/http"
	"slices"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// HandlerNext is a function that represents the next handler in the middleware chain.
type HandlerNext func(ctx context.Context, handlerData *HandlerData, upd *Update) yaerrors.Error

// HandlerMiddleware is a middleware function that can process an update before or after the main handler.
type HandlerMiddleware func(
	ctx context.Context,
	handlerData *HandlerData,
	upd *Update,
	next HandlerNext,
) yaerrors.Error

// AddMiddleware adds one or more middlewares to the router. Middlewares run
// in the order they were added, parents first.
//
// Example usage:
//
//	r.AddMiddleware(loggingMiddleware, authMiddleware)
func (r *RouterGroup) AddMiddleware(mw ...HandlerMiddleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// chainMiddleware chains the provided middlewares and returns a single HandlerNext function.
func chainMiddleware(final HandlerNext, middlewares ...HandlerMiddleware) HandlerNext {
	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		next := final

		final = func(ctx context.Context, hd *HandlerData, upd *Update) yaerrors.Error {
			return middleware(ctx, hd, upd, next)
		}
	}

	return final
}

// wrapHandler wraps a typed handler into a HandlerNext that only accepts
// updates of typ.
func wrapHandler[T UpdatePayload](
	h func(context.Context, *HandlerData, T) yaerrors.Error,
	typ UpdateType,
) HandlerNext {
	return func(ctx context.Context, handlerData *HandlerData, upd *Update) yaerrors.Error {
		if upd.Type != typ {
			return yaerrors.FromError(http.StatusContinue, ErrRouteMismatch, typ.String())
		}

		payload, ok := upd.Payload.(T)
		if !ok {
			return yaerrors.FromError(http.StatusContinue, ErrRouteMismatch, typ.String())
		}

		return h(ctx, handlerData, payload)
	}
}

// collectMiddlewares collects middlewares from the current router and its parent routers.
func (r *RouterGroup) collectMiddlewares() []HandlerMiddleware {
	if r.parent == nil {
		return r.middlewares
	}

	return slices.Concat(r.parent.collectMiddlewares(), r.middlewares)
}
