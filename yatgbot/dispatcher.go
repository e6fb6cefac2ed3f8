package yatgbot

import (
	"context"
	"errors"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// dispatch runs the first route of the group or of its sub-routers that
// accepts the update. Sub-routers are tried in the order they were included,
// after every local route. It reports whether a route took the update.
func (r *RouterGroup) dispatch(ctx context.Context, hdata *HandlerData) (bool, yaerrors.Error) {
	deps := FilterDependencies{Bot: hdata.Bot, Update: hdata.Update}

	for _, rt := range r.routes {
		if rt.typ != hdata.Update.Type {
			continue
		}

		ok, err := r.checkFilters(ctx, deps, rt.filters)
		if err != nil {
			return false, err.Wrap("failed to apply filters")
		}

		if !ok {
			hdata.Log.Debugf("Filters not passed for %s", hdata.Update.Type)

			continue
		}

		err = chainMiddleware(rt.handler, r.collectMiddlewares()...)(ctx, hdata, hdata.Update)
		if err != nil {
			if errors.Is(err, ErrRouteMismatch) {
				continue
			}

			return true, err.Wrap("handler execution failed")
		}

		return true, nil
	}

	for _, sub := range r.sub {
		handled, err := sub.dispatch(ctx, hdata)
		if err != nil {
			return handled, err.Wrap("sub-router dispatch failed")
		}

		if handled {
			return true, nil
		}
	}

	return false, nil
}

// checkFilters checks the filters of the current router and its parents recursively.
func (r *RouterGroup) checkFilters(
	ctx context.Context,
	deps FilterDependencies,
	local []Filter,
) (bool, yaerrors.Error) {
	// 1) Build the chain from current group up to root.
	var chain []*RouterGroup
	for g := r; g != nil; g = g.parent {
		chain = append(chain, g)
	}

	// 2) Run base filters from root to current.
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].base {
			ok, err := f(ctx, deps)
			if err != nil {
				return false, err.Wrap("base filter check failed")
			}

			if !ok {
				return false, nil
			}
		}
	}

	// 3) Run local (route) filters last.
	for _, f := range local {
		ok, err := f(ctx, deps)
		if err != nil {
			return false, err.Wrap("local filter check failed")
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}
