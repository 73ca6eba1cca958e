/*
Package user contains the local user's identity within the lobby platform.

The synchronizer compares every inbound membership event against this identity
to decide whether an event concerns the local user (self-kick, own lobby
deleted, own turn) or someone the user is merely browsing.
*/
package user

import "lobbysync/internal/configs"

// User represents the identity of the authenticated local user.
type User struct {

	// ID is the platform-wide unique identifier for the user.
	ID string `json:"id"`

	// Name is the display name shown in lobby member lists.
	Name string `json:"name"`

	// Avatar is the URL for the user's avatar, when set.
	Avatar string `json:"avatar,omitempty"`
}

// FromConfig builds the local user identity from the daemon configuration.
func FromConfig(cfg *configs.AppConfig) User {
	return User{
		ID:     cfg.UserID,
		Name:   cfg.UserName,
		Avatar: cfg.AvatarURL,
	}
}

// Is reports whether the given id identifies the local user.
func (u User) Is(id string) bool {
	return id != "" && u.ID == id
}
