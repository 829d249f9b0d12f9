package storage

import (
	"errors"
	"fmt"
	"strings"
)

type Resource int

const (
	Policies Resource = iota
	UserInfo
	CurrentEvent
	CurrentUser
	LastEstimate
)

var resourceNames = map[Resource]string{
	Policies:     "policies",
	UserInfo:     "userInfo",
	CurrentEvent: "currentEvent",
	CurrentUser:  "currentUser",
	LastEstimate: "lastEstimate",
}

func (r Resource) String() string {
	if n, ok := resourceNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Resource(%d)", int(r))
}

// UserScoped reports whether keys for r carry the owning user's id. Session
// resources hold one value per device session.
func (r Resource) UserScoped() bool {
	return r == Policies || r == UserInfo
}

var ErrMissingUser = errors.New("storage: user id required for user-scoped resource")

// KeyFor is the only place storage keys are built. User-scoped resources are
// always "<resource>:<userID>"; an empty user id is an error rather than a
// shared key.
func KeyFor(r Resource, userID string) (string, error) {
	name, ok := resourceNames[r]
	if !ok {
		return "", fmt.Errorf("storage: unknown resource %d", int(r))
	}
	if !r.UserScoped() {
		return name, nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingUser, name)
	}
	return name + ":" + userID, nil
}
