package usecase

import (
	"context"

	"github.com/totegamma/misblock/internal/domain"
)

// WithRequester returns a context acting as the given identity.
func WithRequester(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, domain.RequesterIdCtxKey, identity)
}

func Requester(ctx context.Context) (string, bool) {
	requester, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
	return requester, ok && requester != ""
}

// RequireIdentity fails unless the context acts as who.
func RequireIdentity(ctx context.Context, who string) error {
	requester, ok := Requester(ctx)
	if !ok {
		return domain.Unauthorized("missing requester")
	}
	if requester != who {
		return domain.Unauthorized("%s cannot act as %s", requester, who)
	}
	return nil
}

// RequireAdmin fails unless the context acts as the ledger admin.
func (l *Ledger) RequireAdmin(ctx context.Context) error {
	if l.config.Admin == "" {
		return domain.Unauthorized("admin is not configured")
	}
	return RequireIdentity(ctx, l.config.Admin)
}

// requireRelay accepts the token contract relay or the admin.
func (l *Ledger) requireRelay(ctx context.Context) error {
	requester, ok := Requester(ctx)
	if !ok {
		return domain.Unauthorized("missing requester")
	}
	if requester == l.config.TokenContract || (l.config.Admin != "" && requester == l.config.Admin) {
		return nil
	}
	return domain.Unauthorized("%s cannot relay transfers", requester)
}
