package datasource

import (
	"context"
	"fmt"

	"github.com/devidclub/devid-go/internal/client"
	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

const (
	videoInfoPath = "/video/info/"
	videoVotePath = "/video/vote"
)

// VideoDataSource retrieves video metadata and posts votes.
type VideoDataSource struct {
	base
}

// NewVideoDataSource creates a video data source.
func NewVideoDataSource(api *client.Client) *VideoDataSource {
	return &VideoDataSource{base: base{api: api}}
}

// GetByID fetches video metadata by the video id.
func (s *VideoDataSource) GetByID(ctx context.Context, id string) result.Result[models.Video] {
	if !models.IsValidID(id) {
		return result.Failure[models.Video](fmt.Errorf("%w: malformed video id %q", ErrInvalidArgument, id))
	}
	var video models.Video
	if err := s.getJSON(ctx, videoInfoPath+id, "video", &video); err != nil {
		return result.Failure[models.Video](err)
	}
	return result.Success(video)
}

// Vote posts the caller's own vote for a video and returns the updated
// video metadata.
func (s *VideoDataSource) Vote(ctx context.Context, id string, rating models.Rating) result.Result[models.Video] {
	if !models.IsValidID(id) {
		return result.Failure[models.Video](fmt.Errorf("%w: malformed video id %q", ErrInvalidArgument, id))
	}
	if !rating.Valid() {
		return result.Failure[models.Video](fmt.Errorf("%w: rating %d", ErrInvalidArgument, int8(rating)))
	}

	body, err := s.api.Post(ctx, videoVotePath, map[string]any{
		"_id": id,
		"val": int8(rating),
	})
	if err != nil {
		return result.Failure[models.Video](err)
	}

	var video models.Video
	if err := decode(body, "video", &video); err != nil {
		return result.Failure[models.Video](err)
	}
	return result.Success(video)
}
