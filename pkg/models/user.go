package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// JSON keys shared with the backend wire format.
const (
	keyID          = "_id"
	keyUserName    = "userName"
	keyDisplayName = "displayName"
	keyJoinedDate  = "joinedDate"
	keyEmail       = "email"
	keyToken       = "token"
	keyUserObj     = "user"
)

var (
	idPattern       = regexp.MustCompile(`^[a-f0-9]{24}$`)
	userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{2,16}$`)
)

// IsValidID reports whether s is a well-formed entity id
// (24 lowercase hex characters, as issued by the backend).
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}

// IsValidUserName reports whether s is a well-formed user name.
func IsValidUserName(s string) bool {
	return userNamePattern.MatchString(s)
}

// User represents an account on the platform.
type User struct {
	ID          string
	UserName    string
	DisplayName string
	Joined      time.Time
}

// userWire mirrors the backend JSON shape. Fields are pointers so that
// missing keys are detectable; the wire format encodes the join date as
// milliseconds since the epoch.
type userWire struct {
	ID          *string `json:"_id"`
	UserName    *string `json:"userName"`
	DisplayName *string `json:"displayName"`
	JoinedDate  *int64  `json:"joinedDate"`
	Email       *string `json:"email,omitempty"`
}

func (w *userWire) toUser() (User, error) {
	switch {
	case w.ID == nil:
		return User{}, fmt.Errorf("missing field %q", keyID)
	case w.UserName == nil:
		return User{}, fmt.Errorf("missing field %q", keyUserName)
	case w.DisplayName == nil:
		return User{}, fmt.Errorf("missing field %q", keyDisplayName)
	case w.JoinedDate == nil:
		return User{}, fmt.Errorf("missing field %q", keyJoinedDate)
	}
	return User{
		ID:          *w.ID,
		UserName:    *w.UserName,
		DisplayName: *w.DisplayName,
		Joined:      time.UnixMilli(*w.JoinedDate).UTC(),
	}, nil
}

// MarshalJSON encodes the user in the backend wire format.
func (u User) MarshalJSON() ([]byte, error) {
	id, name, display, joined := u.ID, u.UserName, u.DisplayName, u.Joined.UnixMilli()
	return json.Marshal(userWire{
		ID:          &id,
		UserName:    &name,
		DisplayName: &display,
		JoinedDate:  &joined,
	})
}

// UnmarshalJSON decodes the backend wire format, rejecting objects with
// missing fields so that partial entities never escape the parser.
func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := w.toUser()
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// LoggedInUser is a User extended with the credentials obtained from a
// successful login exchange. It carries everything needed to reconstruct
// the session after a process restart.
type LoggedInUser struct {
	User
	Email string
	Token string
}

// loggedInWire mirrors the login response: the user object nested under
// "user" (including the email) with the bearer token beside it.
type loggedInWire struct {
	User  *userWire `json:"user"`
	Token *string   `json:"token"`
}

// MarshalJSON encodes the session in the login-response wire format.
func (u LoggedInUser) MarshalJSON() ([]byte, error) {
	id, name, display, email, token := u.ID, u.UserName, u.DisplayName, u.Email, u.Token
	joined := u.Joined.UnixMilli()
	return json.Marshal(loggedInWire{
		User: &userWire{
			ID:          &id,
			UserName:    &name,
			DisplayName: &display,
			JoinedDate:  &joined,
			Email:       &email,
		},
		Token: &token,
	})
}

// UnmarshalJSON decodes a login response into a LoggedInUser.
func (u *LoggedInUser) UnmarshalJSON(data []byte) error {
	var w loggedInWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.User == nil {
		return fmt.Errorf("missing field %q", keyUserObj)
	}
	if w.Token == nil {
		return fmt.Errorf("missing field %q", keyToken)
	}
	if w.User.Email == nil {
		return fmt.Errorf("missing field %q", keyEmail)
	}
	parsed, err := w.User.toUser()
	if err != nil {
		return err
	}
	*u = LoggedInUser{User: parsed, Email: *w.User.Email, Token: *w.Token}
	return nil
}

// Attributes flattens the session into a string map suitable for a platform
// credential store. The inverse is LoggedInUserFromAttributes.
func (u *LoggedInUser) Attributes() map[string]string {
	return map[string]string{
		keyID:          u.ID,
		keyUserName:    u.UserName,
		keyDisplayName: u.DisplayName,
		keyJoinedDate:  strconv.FormatInt(u.Joined.UnixMilli(), 10),
		keyEmail:       u.Email,
		keyToken:       u.Token,
	}
}

// LoggedInUserFromAttributes rebuilds a session from its flattened form.
func LoggedInUserFromAttributes(attrs map[string]string) (*LoggedInUser, error) {
	for _, key := range []string{keyID, keyUserName, keyDisplayName, keyJoinedDate, keyEmail, keyToken} {
		if _, ok := attrs[key]; !ok {
			return nil, fmt.Errorf("missing attribute %q", key)
		}
	}
	joined, err := strconv.ParseInt(attrs[keyJoinedDate], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed attribute %q: %w", keyJoinedDate, err)
	}
	return &LoggedInUser{
		User: User{
			ID:          attrs[keyID],
			UserName:    attrs[keyUserName],
			DisplayName: attrs[keyDisplayName],
			Joined:      time.UnixMilli(joined).UTC(),
		},
		Email: attrs[keyEmail],
		Token: attrs[keyToken],
	}, nil
}
