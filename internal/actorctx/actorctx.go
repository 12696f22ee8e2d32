// Package actorctx carries the signed-in user on a context.Context so code
// below the HTTP layer can attribute its work without a gin dependency.
package actorctx

import (
	"context"

	"github.com/expromedia/Marx/internal/domain/user"
)

type ctxKey struct{}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(user.User)

	return u, ok && u.Username != ""
}
