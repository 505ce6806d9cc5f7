package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

// LoginSource is the data source contract the login repository wraps.
type LoginSource interface {
	Login(ctx context.Context, userName, password string) result.Result[models.LoggedInUser]
	Logout(ctx context.Context)
}

// LoginRepository holds at most one session: the currently logged-in user.
type LoginRepository struct {
	mu      sync.Mutex
	source  LoginSource
	session *models.LoggedInUser
	logger  zerolog.Logger
}

// LoginOption configures a LoginRepository.
type LoginOption func(*LoginRepository)

// WithLoginLogger sets the repository logger.
func WithLoginLogger(logger zerolog.Logger) LoginOption {
	return func(r *LoginRepository) { r.logger = logger }
}

// NewLoginRepository creates a login repository with no active session.
func NewLoginRepository(source LoginSource, opts ...LoginOption) *LoginRepository {
	r := &LoginRepository{source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsLoggedIn reports whether a session is currently held.
func (r *LoginRepository) IsLoggedIn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Session returns a copy of the current session, or nil when logged out.
func (r *LoginRepository) Session() *models.LoggedInUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	session := *r.session
	return &session
}

// Restore reattaches a previously persisted session, e.g. after a process
// restart. A nil user clears the session without server interaction.
func (r *LoginRepository) Restore(user *models.LoggedInUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = user
}

// Login exchanges credentials for a session. A re-login under the already
// active user name returns the cached session without a network call; a
// login under a different name logs the old session out first. Failed
// attempts leave the session state unchanged.
func (r *LoginRepository) Login(ctx context.Context, userName, password string) result.Result[models.LoggedInUser] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		if r.session.UserName == userName {
			return result.Success(*r.session)
		}
		r.logoutLocked(ctx)
	}

	res := r.source.Login(ctx, userName, password)
	if user, err := res.Get(); err == nil {
		r.session = &user
	} else {
		r.logger.Debug().Err(err).Str("user_name", userName).Msg("login failed")
	}
	return res
}

// Logout clears the session and asks the data source to invalidate
// server-side state. Logging out while logged out is a no-op.
func (r *LoginRepository) Logout(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return
	}
	r.logoutLocked(ctx)
}

func (r *LoginRepository) logoutLocked(ctx context.Context) {
	r.session = nil
	r.source.Logout(ctx)
}
