package middleware

import (
	"context"

	"github.com/routeworks/memoflow-backend/internal/domain"
	"github.com/routeworks/memoflow-backend/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrForbidden if the context user is not admin.
// Use in REST handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	role := domain.UserRole(ctxutil.UserRoleFromCtx(ctx))
	if !role.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
