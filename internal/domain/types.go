package domain

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// ============================================================================
// Relationship status
// ============================================================================

// Status is the derived relationship state between an ordered user pair.
// It is never stored; it is computed from the presence of the edge forms.
type Status string

const (
	StatusNone    Status = "none"    // no edge in either direction
	StatusFriends Status = "friends" // confirmed friendship
	StatusSent    Status = "sent"    // viewer has an outgoing pending request
	StatusPending Status = "pending" // viewer has an incoming pending request
)

// ResolveStatus maps the three edge probes to a single status.
// Under the engine invariants at most one probe is true, but the
// resolution stays deterministic if the store ever holds conflicting
// edges: friends wins, then the outgoing request, then the incoming one.
func ResolveStatus(friends, sent, pending bool) Status {
	switch {
	case friends:
		return StatusFriends
	case sent:
		return StatusSent
	case pending:
		return StatusPending
	default:
		return StatusNone
	}
}

// ============================================================================
// Operation results
// ============================================================================

// Result is the outcome of a relationship mutation. A failed precondition
// ("already friends", "no pending request") is reported here with
// Success=false, never as an error: no-op outcomes are routine for social
// actions and callers check the flag instead of handling exceptions.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendResult is the outcome of sending a friend request. Created
// distinguishes a newly written request edge from an already existing
// relationship.
type SendResult struct {
	Result
	Created bool `json:"created"`
}

// ============================================================================
// Graph records
// ============================================================================

// User is a user node in the relationship graph. The node is a
// foreign-key anchor only; profile data lives in the primary user store.
type User struct {
	UserID    string    `json:"user_id" mapstructure:"userId"`
	CreatedAt time.Time `json:"created_at,omitempty" mapstructure:"createdAt"`
}

// FriendRequest is the request edge record between two users. It is the
// payload of the newFriendRequest notification.
type FriendRequest struct {
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is one ranked friend suggestion. Score is
// MutualFriendCount*2 for friend-of-friend candidates; fallback
// candidates carry the reserved score 1.
type Suggestion struct {
	User              User  `json:"user"`
	MutualFriendCount int64 `json:"mutual_friend_count"`
	Score             int64 `json:"score"`
}

// DecodeUser converts a node property map returned by the store into a User.
func DecodeUser(props map[string]any) (User, error) {
	var u User

	config := &mapstructure.DecoderConfig{
		Result:           &u,
		WeaklyTypedInput: true,
		DecodeHook:       timeHook,
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return User{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(props); err != nil {
		return User{}, fmt.Errorf("failed to decode user node: %w", err)
	}

	return u, nil
}

// timeHook handles string/time -> time.Time conversion for node properties.
func timeHook(_, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}

	if t, ok := data.(time.Time); ok {
		return t, nil
	}

	str, ok := data.(string)
	if !ok {
		return data, nil
	}

	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, str); err == nil {
			return t, nil
		}
	}

	return data, fmt.Errorf("unable to parse time: %s", str)
}

// ============================================================================
// Validation
// ============================================================================

var (
	// ErrInvalidUserID reports a malformed user identifier.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrSelfRelation reports a relationship operation where both sides
	// are the same user.
	ErrSelfRelation = errors.New("cannot create a relationship with yourself")
)

// ValidateUserID checks that an identifier is usable as a graph node key.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, " \t\n") {
		return errors.WithMessagef(ErrInvalidUserID, "%q", id)
	}
	return nil
}

// ValidatePair checks both identifiers of a relationship operation.
// Validation failures are rejected before any store query is issued.
func ValidatePair(a, b string) error {
	if err := ValidateUserID(a); err != nil {
		return err
	}
	if err := ValidateUserID(b); err != nil {
		return err
	}
	if a == b {
		return ErrSelfRelation
	}
	return nil
}
