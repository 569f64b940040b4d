package auth

import (
	"context"

	"taskBuddy/internal/models/user"
)

// Provider — провайдер аутентификации с единственной операцией
// интерактивного входа. Любой неуспех означает «остаёмся разлогиненными».
type Provider interface {
	SignIn(ctx context.Context) (*user.User, error)
}
