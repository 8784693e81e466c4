package threadly

import "github.com/google/uuid"

const defaultUsername = "user"

// Identity is the client's view of the authenticated user. It starts from
// decoded token claims and is enriched asynchronously with profile fields.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	// ID is empty when the token carries no id claim.
	ID              string `json:"id,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
	// Enriched marks that the profile fields were fetched at least once, so
	// a rehydrated session knows whether to re-run enrichment.
	Enriched bool `json:"enriched,omitempty"`
}

func (i Identity) IsZero() bool {
	return i.Username == "" && i.Email == "" && i.ID == ""
}

// UserUUID parses the id claim as a UUID when the backend issues one.
func (i Identity) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(i.ID)
}

func defaultIdentity() Identity {
	return Identity{Username: defaultUsername}
}

// Profile is the user-profile endpoint payload. Field names follow the wire
// format of GET /users/{username}.
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profileImageUrl"`
	FollowersCount  int    `json:"followersCount"`
	FollowingCount  int    `json:"followingCount"`
	Following       bool   `json:"following"`
}

// FollowState projects a profile into the optimistic follow controller's
// target state.
func (p Profile) FollowState() FollowState {
	return FollowState{Following: p.Following, Followers: p.FollowersCount}
}
