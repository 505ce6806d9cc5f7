package datasource

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/devidclub/devid-go/internal/client"
	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

const loginPath = "/user/login"

// LoginDataSource exchanges credentials for an authenticated session.
type LoginDataSource struct {
	base
	logger zerolog.Logger
}

// NewLoginDataSource creates a login data source. The client must be
// unauthenticated; there is no token before a login succeeds.
func NewLoginDataSource(api *client.Client, logger zerolog.Logger) *LoginDataSource {
	return &LoginDataSource{base: base{api: api}, logger: logger}
}

// Login posts the credentials and parses the resulting session. A response
// carrying an "err" field becomes an AuthError with the server's message.
func (s *LoginDataSource) Login(ctx context.Context, userName, password string) result.Result[models.LoggedInUser] {
	body, err := s.api.Post(ctx, loginPath, map[string]string{
		"userName": userName,
		"password": password,
	})
	if err != nil {
		return result.Failure[models.LoggedInUser](err)
	}
	if len(body) == 0 {
		return result.Failure[models.LoggedInUser](ErrEmptyResponse)
	}

	var failure struct {
		Err *string `json:"err"`
	}
	if err := json.Unmarshal(body, &failure); err == nil && failure.Err != nil {
		return result.Failure[models.LoggedInUser](&AuthError{Message: *failure.Err})
	}

	var user models.LoggedInUser
	if err := decode(body, "login", &user); err != nil {
		return result.Failure[models.LoggedInUser](err)
	}
	return result.Success(user)
}

// Logout invalidates server-side session state. The backend does not
// expose token revocation yet, so discarding the token client-side is all
// that happens; the hook exists so repositories need no change when it
// does.
func (s *LoginDataSource) Logout(ctx context.Context) {
	s.logger.Debug().Msg("logout: no server-side revocation endpoint, token discarded locally")
}
