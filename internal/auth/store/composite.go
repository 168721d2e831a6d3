package store

import "context"

// Composite overlays an alternate Sessions repository on top of a base Store.
// It exists so sessions can live in redis while users stay in sqlite: session
// reads and writes go to the overlay, everything else (including transactions)
// goes to the base store.
//
// Operations that must be atomic never span both backends: enabling 2FA
// touches users and recovery codes only, and the verified-flag flip is a
// single-key write on the session backend.
type Composite struct {
	Base            Store
	SessionsOverlay Sessions
}

func (c *Composite) Users() Users                 { return c.Base.Users() }
func (c *Composite) Sessions() Sessions           { return c.SessionsOverlay }
func (c *Composite) RecoveryCodes() RecoveryCodes { return c.Base.RecoveryCodes() }

func (c *Composite) ApplyMigrations() error { return c.Base.ApplyMigrations() }

func (c *Composite) Tx(ctx context.Context) (Tx, error) { return c.Base.Tx(ctx) }

func (c *Composite) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return c.Base.WithTx(ctx, fn)
}

func (c *Composite) Close() error { return c.Base.Close() }

func (c *Composite) Ping(ctx context.Context) error { return c.Base.Ping(ctx) }
