package datasource

import (
	"context"
	"fmt"
	"image"

	"github.com/devidclub/devid-go/internal/cdn"
	"github.com/devidclub/devid-go/internal/client"
	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

const (
	userByIDPath       = "/user/byId/"
	userByUserNamePath = "/user/byUserName/"
)

// UserDataSource retrieves user data from the backend and profile pictures
// from the CDN.
type UserDataSource struct {
	base
	cdn *cdn.Client
}

// NewUserDataSource creates a user data source. The CDN client may be nil
// if profile pictures are never requested.
func NewUserDataSource(api *client.Client, cdnClient *cdn.Client) *UserDataSource {
	return &UserDataSource{base: base{api: api}, cdn: cdnClient}
}

// GetByID fetches a user by their unique id.
func (s *UserDataSource) GetByID(ctx context.Context, id string) result.Result[models.User] {
	if !models.IsValidID(id) {
		return result.Failure[models.User](fmt.Errorf("%w: malformed user id %q", ErrInvalidArgument, id))
	}
	return s.fetch(ctx, userByIDPath+id)
}

// GetByUserName fetches a user by their user name.
func (s *UserDataSource) GetByUserName(ctx context.Context, name string) result.Result[models.User] {
	if !models.IsValidUserName(name) {
		return result.Failure[models.User](fmt.Errorf("%w: malformed user name %q", ErrInvalidArgument, name))
	}
	return s.fetch(ctx, userByUserNamePath+name)
}

// ProfilePicture downloads the user's profile picture from the CDN.
func (s *UserDataSource) ProfilePicture(ctx context.Context, id string) result.Result[image.Image] {
	if !models.IsValidID(id) {
		return result.Failure[image.Image](fmt.Errorf("%w: malformed user id %q", ErrInvalidArgument, id))
	}
	img, err := s.cdn.ProfilePicture(ctx, id)
	if err != nil {
		return result.Failure[image.Image](err)
	}
	return result.Success(img)
}

func (s *UserDataSource) fetch(ctx context.Context, path string) result.Result[models.User] {
	var user models.User
	if err := s.getJSON(ctx, path, "user", &user); err != nil {
		return result.Failure[models.User](err)
	}
	return result.Success(user)
}
