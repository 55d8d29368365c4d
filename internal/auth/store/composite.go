package store

import "context"

// WithAccountTokens returns base with its token records served by tokens.
// Everything else, transactions included, stays on base; token records are
// never part of a base transaction.
func WithAccountTokens(base Store, tokens AccountTokenRepo) Store {
	return &composite{Store: base, tokens: tokens}
}

type composite struct {
	Store
	tokens AccountTokenRepo
}

func (c *composite) AccountTokens() AccountTokenRepo { return c.tokens }

func (c *composite) Tx(ctx context.Context) (Tx, error) {
	tx, err := c.Store.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &compositeTx{baseTx: tx, tokens: c.tokens}, nil
}

func (c *composite) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return c.Store.WithTx(ctx, func(tx Tx) error {
		return fn(&compositeTx{baseTx: tx, tokens: c.tokens})
	})
}

// baseTx lets compositeTx embed a Tx without the field name shadowing the
// promoted Tx method.
type baseTx = Tx

type compositeTx struct {
	baseTx
	tokens AccountTokenRepo
}

func (t *compositeTx) AccountTokens() AccountTokenRepo { return t.tokens }
