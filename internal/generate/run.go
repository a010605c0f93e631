package generate

import "context"

// Run generates documentation for sessionID and blocks until a terminal
// state or ctx is done. fn, if non-nil, sees every update. The returned
// error is nil only for Done.
func (p *Poller) Run(ctx context.Context, sessionID string, fn func(Update)) (Update, error) {
	h := p.Start(ctx, sessionID)
	defer h.Cancel()

	for u := range h.Updates() {
		if fn != nil {
			fn(u)
		}
	}

	res, ok := h.Result()
	if !ok {
		if err := ctx.Err(); err != nil {
			return Update{}, err
		}
		return Update{}, context.Canceled
	}
	if res.State != Done {
		return res, res.Err
	}
	return res, nil
}
