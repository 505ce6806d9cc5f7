package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rating is the tri-state vote a user can cast on a video.
type Rating int8

// Rating wire values.
const (
	RatingLike    Rating = 1
	RatingNeutral Rating = 0
	RatingDislike Rating = -1
)

// Valid reports whether r is one of the three defined rating values.
func (r Rating) Valid() bool {
	return r == RatingLike || r == RatingNeutral || r == RatingDislike
}

func (r Rating) String() string {
	switch r {
	case RatingLike:
		return "like"
	case RatingDislike:
		return "dislike"
	case RatingNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("rating(%d)", int8(r))
	}
}

// Video holds the metadata of a single video, including its vote counters
// and the requesting caller's own vote. OwnRating is neutral both for
// anonymous callers and for users who have not voted.
type Video struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Uploaded    time.Time
	Duration    int64
	Likes       int64
	Dislikes    int64
	OwnRating   Rating
}

// ratingWire is the nested "rating" object. The "own" key is absent for
// anonymous requests.
type ratingWire struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Own      *int8 `json:"own,omitempty"`
}

// videoWire mirrors the backend JSON shape; upload time is milliseconds
// since the epoch and the rating object is optional.
type videoWire struct {
	ID          *string     `json:"_id"`
	UserID      *string     `json:"user_id"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Time        *int64      `json:"time"`
	Duration    *int64      `json:"duration"`
	Rating      *ratingWire `json:"rating,omitempty"`
}

// MarshalJSON encodes the video in the backend wire format. The rating
// object is always emitted so the encoding round-trips losslessly.
func (v Video) MarshalJSON() ([]byte, error) {
	id, userID, title, description := v.ID, v.UserID, v.Title, v.Description
	uploaded, duration, own := v.Uploaded.UnixMilli(), v.Duration, int8(v.OwnRating)
	return json.Marshal(videoWire{
		ID:          &id,
		UserID:      &userID,
		Title:       &title,
		Description: &description,
		Time:        &uploaded,
		Duration:    &duration,
		Rating: &ratingWire{
			Likes:    v.Likes,
			Dislikes: v.Dislikes,
			Own:      &own,
		},
	})
}

// UnmarshalJSON decodes the backend wire format. A missing rating object
// yields zero counters and a neutral own vote; a missing "own" key yields
// neutral. Any other missing field is an error.
func (v *Video) UnmarshalJSON(data []byte) error {
	var w videoWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.ID == nil:
		return fmt.Errorf("missing field %q", "_id")
	case w.UserID == nil:
		return fmt.Errorf("missing field %q", "user_id")
	case w.Title == nil:
		return fmt.Errorf("missing field %q", "title")
	case w.Description == nil:
		return fmt.Errorf("missing field %q", "description")
	case w.Time == nil:
		return fmt.Errorf("missing field %q", "time")
	case w.Duration == nil:
		return fmt.Errorf("missing field %q", "duration")
	}

	parsed := Video{
		ID:          *w.ID,
		UserID:      *w.UserID,
		Title:       *w.Title,
		Description: *w.Description,
		Uploaded:    time.UnixMilli(*w.Time).UTC(),
		Duration:    *w.Duration,
		OwnRating:   RatingNeutral,
	}
	if w.Rating != nil {
		parsed.Likes = w.Rating.Likes
		parsed.Dislikes = w.Rating.Dislikes
		if w.Rating.Own != nil {
			own := Rating(*w.Rating.Own)
			if !own.Valid() {
				return fmt.Errorf("malformed field %q: value %d", "rating.own", *w.Rating.Own)
			}
			parsed.OwnRating = own
		}
	}
	*v = parsed
	return nil
}
