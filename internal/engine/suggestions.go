package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/voisin/friendgraph/internal/domain"
)

// DefaultSuggestionLimit caps suggestion results when the caller passes no
// usable limit.
const DefaultSuggestionLimit = 10

// FallbackScore is reserved for backfill candidates with no mutual
// friends. The primary path always scores at least 2.
const FallbackScore = 1

// Suggestions returns up to limit candidate users the requester does not
// already know. Friends-of-friends come first, ranked by shared friend
// count; if they fall short of the limit, unrelated users backfill the
// remainder at the reserved fallback score. Both reads apply the same
// exclusion rules: no existing FRIENDS or FRIEND_REQUEST edge in either
// direction, and never the requester itself.
func (e *Engine) Suggestions(ctx context.Context, userID string, limit int) ([]domain.Suggestion, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	suggestions, err := e.primarySuggestions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if len(suggestions) < limit {
		backfill, err := e.fallbackSuggestions(ctx, userID, limit-len(suggestions), collectIDs(suggestions))
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, backfill...)
	}

	return suggestions, nil
}

// primarySuggestions ranks two-hop FRIENDS neighbors. Ordering is done by
// the store: score descending, mutual count descending, user id as the
// stable tiebreak.
func (e *Engine) primarySuggestions(ctx context.Context, userID string, limit int) ([]domain.Suggestion, error) {
	rows, err := e.store.Read(ctx, cypherSuggestionsPrimary, map[string]any{
		"userId": userID,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(rows))
	for _, row := range rows {
		user, err := suggestionUser(row)
		if err != nil {
			return nil, err
		}

		suggestions = append(suggestions, domain.Suggestion{
			User:              user,
			MutualFriendCount: intValue(row["mutualFriends"]),
			Score:             intValue(row["score"]),
		})
	}

	return suggestions, nil
}

// fallbackSuggestions backfills with arbitrary unrelated users. The store
// orders them randomly; callers must treat their order as meaningless.
func (e *Engine) fallbackSuggestions(ctx context.Context, userID string, limit int, exclude []string) ([]domain.Suggestion, error) {
	rows, err := e.store.Read(ctx, cypherSuggestionsFallback, map[string]any{
		"userId":  userID,
		"limit":   limit,
		"exclude": exclude,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(rows))
	for _, row := range rows {
		user, err := suggestionUser(row)
		if err != nil {
			return nil, err
		}

		suggestions = append(suggestions, domain.Suggestion{
			User:  user,
			Score: FallbackScore,
		})
	}

	return suggestions, nil
}

func suggestionUser(row map[string]any) (domain.User, error) {
	props, ok := row["suggestion"].(map[string]any)
	if !ok {
		return domain.User{}, errors.New("malformed suggestion record")
	}
	return domain.DecodeUser(props)
}

func collectIDs(suggestions []domain.Suggestion) []string {
	ids := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.User.UserID)
	}
	return ids
}
