package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/voisin/friendgraph/internal/domain"
	"github.com/voisin/friendgraph/internal/identity"
	"github.com/voisin/friendgraph/internal/notify"
	"github.com/voisin/friendgraph/pkg/graph"
	"github.com/voisin/friendgraph/pkg/log"
)

// Engine owns all friendship state-machine logic. It is stateless and
// reentrant: every operation is one composite query against the graph
// store, and all serialization needed to prevent duplicate edges is
// delegated to the atomicity of that single query. Failed preconditions
// come back as results, store failures as errors; the engine never
// retries.
type Engine struct {
	logger   *slog.Logger
	store    graph.Store
	identity identity.Resolver
	notifier notify.Notifier
}

// New creates an Engine on top of the given collaborators.
func New(store graph.Store, resolver identity.Resolver, notifier notify.Notifier) *Engine {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &Engine{
		logger:   log.Logger("engine"),
		store:    store,
		identity: resolver,
		notifier: notifier,
	}
}

// SendRequest creates a FRIEND_REQUEST edge from one user to another.
// Both users must resolve through the identity store before their graph
// anchors are created. An already existing relationship in either
// direction makes the call a no-op reported through the Created flag.
func (e *Engine) SendRequest(ctx context.Context, from, to string) (*domain.SendResult, error) {
	if err := domain.ValidatePair(from, to); err != nil {
		return nil, err
	}

	for _, id := range []string{from, to} {
		exists, err := e.identity.Exists(ctx, id)
		if err != nil {
			return nil, errors.WithMessage(err, "identity lookup failed")
		}
		if !exists {
			return &domain.SendResult{
				Result: domain.Result{Success: false, Message: "User not found!"},
			}, nil
		}
	}

	now := time.Now().UTC()
	rows, err := e.store.Write(ctx, cypherSendRequest, map[string]any{
		"from": from,
		"to":   to,
		"now":  now,
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &domain.SendResult{
			Result: domain.Result{Success: false, Message: "Friend request already exists or users are already friends!"},
		}, nil
	}

	e.logger.Info("friend request sent", "from", from, "to", to)
	e.notifier.Notify(ctx, notify.EventNewFriendRequest, domain.FriendRequest{
		FromID:    from,
		ToID:      to,
		CreatedAt: now,
	})

	return &domain.SendResult{
		Result:  domain.Result{Success: true, Message: "Friend request sent!"},
		Created: true,
	}, nil
}

// AcceptRequest converts a pending request into a friendship. The request
// edge is deleted and both FRIENDS directions are created in one query.
func (e *Engine) AcceptRequest(ctx context.Context, from, to string) (*domain.Result, error) {
	if err := domain.ValidatePair(from, to); err != nil {
		return nil, err
	}

	rows, err := e.store.Write(ctx, cypherAcceptRequest, map[string]any{
		"from": from,
		"to":   to,
		"now":  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &domain.Result{Success: false, Message: "No pending friend request to accept!"}, nil
	}

	e.logger.Info("friend request accepted", "from", from, "to", to)
	return &domain.Result{Success: true, Message: "Friend request accepted!"}, nil
}

// RejectRequest deletes a pending request from the receiver's side.
func (e *Engine) RejectRequest(ctx context.Context, from, to string) (*domain.Result, error) {
	return e.deleteRequest(ctx, from, to, "rejected", "No pending friend request to reject!", "Friend request rejected!")
}

// CancelRequest deletes a pending request from the sender's side.
func (e *Engine) CancelRequest(ctx context.Context, from, to string) (*domain.Result, error) {
	return e.deleteRequest(ctx, from, to, "cancelled", "No pending friend request to cancel!", "Friend request cancelled!")
}

func (e *Engine) deleteRequest(ctx context.Context, from, to, action, missingMsg, okMsg string) (*domain.Result, error) {
	if err := domain.ValidatePair(from, to); err != nil {
		return nil, err
	}

	rows, err := e.store.Write(ctx, cypherDeleteRequest, map[string]any{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &domain.Result{Success: false, Message: missingMsg}, nil
	}

	e.logger.Info("friend request "+action, "from", from, "to", to)
	return &domain.Result{Success: true, Message: okMsg}, nil
}

// RemoveFriend dissolves a friendship, deleting both directional edges
// together. A pair that is not friends reports failure, not an error.
func (e *Engine) RemoveFriend(ctx context.Context, userID, friendID string) (*domain.Result, error) {
	if err := domain.ValidatePair(userID, friendID); err != nil {
		return nil, err
	}

	rows, err := e.store.Write(ctx, cypherRemoveFriend, map[string]any{
		"userId":   userID,
		"friendId": friendID,
	})
	if err != nil {
		return nil, err
	}

	if removedCount(rows) == 0 {
		return &domain.Result{Success: false, Message: "Users are not friends!"}, nil
	}

	e.logger.Info("friendship removed", "user", userID, "friend", friendID)
	return &domain.Result{Success: true, Message: "Friend removed!"}, nil
}

// Friends returns the user's confirmed friends, ordered by user id.
func (e *Engine) Friends(ctx context.Context, userID string) ([]domain.User, error) {
	return e.listUsers(ctx, cypherFriends, userID, "friend")
}

// IncomingRequests returns the users with a pending request to this user.
func (e *Engine) IncomingRequests(ctx context.Context, userID string) ([]domain.User, error) {
	return e.listUsers(ctx, cypherIncomingRequests, userID, "sender")
}

// OutgoingRequests returns the users this user has a pending request to.
func (e *Engine) OutgoingRequests(ctx context.Context, userID string) ([]domain.User, error) {
	return e.listUsers(ctx, cypherOutgoingRequests, userID, "receiver")
}

func (e *Engine) listUsers(ctx context.Context, cypher, userID, key string) ([]domain.User, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	rows, err := e.store.Read(ctx, cypher, map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		props, ok := row[key].(map[string]any)
		if !ok {
			continue
		}

		user, err := domain.DecodeUser(props)
		if err != nil {
			return nil, errors.WithMessage(err, "malformed user node")
		}
		users = append(users, user)
	}

	return users, nil
}

// Status derives the relationship state between two users from a single
// read probing all three edge forms. Conflicting edges resolve by
// precedence instead of failing, so the read stays available even if a
// past write path violated an invariant.
func (e *Engine) Status(ctx context.Context, userA, userB string) (domain.Status, error) {
	if err := domain.ValidatePair(userA, userB); err != nil {
		return "", err
	}

	rows, err := e.store.Read(ctx, cypherStatus, map[string]any{
		"a": userA,
		"b": userB,
	})
	if err != nil {
		return "", err
	}

	// Missing anchor nodes: the pair has never interacted.
	if len(rows) == 0 {
		return domain.StatusNone, nil
	}

	row := rows[0]
	return domain.ResolveStatus(boolValue(row["friends"]), boolValue(row["sent"]), boolValue(row["pending"])), nil
}

func removedCount(rows []map[string]any) int64 {
	if len(rows) == 0 {
		return 0
	}
	return intValue(rows[0]["removed"])
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func intValue(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
