package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func suggestionRow(userID string, mutual, score int64) map[string]any {
	return map[string]any{
		"suggestion":    map[string]any{"userId": userID},
		"mutualFriends": mutual,
		"score":         score,
	}
}

func fallbackRow(userID string) map[string]any {
	return map[string]any{"suggestion": map[string]any{"userId": userID}}
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()

	// u1-u2-u3 chain: u3 is the only friend-of-friend, scored by one
	// shared friend.
	t.Run("two hop candidate scored by mutual friends", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()
		store.ReadFunc = func(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
			if cypher == cypherSuggestionsPrimary {
				return []map[string]any{suggestionRow("u3", 1, 2)}, nil
			}
			return nil, nil
		}

		suggestions, err := eng.Suggestions(ctx, "u1", 10)
		assert.NoError(t, err)
		assert.Len(t, suggestions, 1)
		assert.Equal(t, "u3", suggestions[0].User.UserID)
		assert.Equal(t, int64(1), suggestions[0].MutualFriendCount)
		assert.Equal(t, int64(2), suggestions[0].Score)
	})

	t.Run("fallback backfills up to the limit", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()
		store.ReadFunc = func(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
			if cypher == cypherSuggestionsPrimary {
				return []map[string]any{
					suggestionRow("u3", 2, 4),
					suggestionRow("u4", 1, 2),
				}, nil
			}
			return []map[string]any{fallbackRow("u7"), fallbackRow("u8")}, nil
		}

		suggestions, err := eng.Suggestions(ctx, "u1", 4)
		assert.NoError(t, err)
		assert.Len(t, suggestions, 4)

		// Primary entries keep their deterministic order and scores.
		assert.Equal(t, "u3", suggestions[0].User.UserID)
		assert.Equal(t, int64(4), suggestions[0].Score)
		assert.Equal(t, "u4", suggestions[1].User.UserID)

		// Fallback entries are set-membership only: score is the
		// reserved 1, mutual count zero, order meaningless.
		backfill := map[string]bool{}
		for _, s := range suggestions[2:] {
			assert.Equal(t, int64(FallbackScore), s.Score)
			assert.Equal(t, int64(0), s.MutualFriendCount)
			backfill[s.User.UserID] = true
		}
		assert.Equal(t, map[string]bool{"u7": true, "u8": true}, backfill)

		// Fallback read excludes collected candidates and only asks for
		// the remainder.
		assert.Len(t, store.ReadCalls, 2)
		fb := store.ReadCalls[1]
		assert.Equal(t, cypherSuggestionsFallback, fb.Cypher)
		assert.Equal(t, []string{"u3", "u4"}, fb.Params["exclude"])
		assert.Equal(t, 2, fb.Params["limit"])
	})

	t.Run("no fallback read when primary fills the limit", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()
		store.ReadFunc = func(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				suggestionRow("u3", 3, 6),
				suggestionRow("u4", 1, 2),
			}, nil
		}

		suggestions, err := eng.Suggestions(ctx, "u1", 2)
		assert.NoError(t, err)
		assert.Len(t, suggestions, 2)
		assert.Len(t, store.ReadCalls, 1)
	})

	t.Run("fallback floor for a sparse graph", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()
		store.ReadFunc = func(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
			if cypher == cypherSuggestionsPrimary {
				return nil, nil
			}
			return []map[string]any{fallbackRow("a"), fallbackRow("b"), fallbackRow("c")}, nil
		}

		suggestions, err := eng.Suggestions(ctx, "u1", 5)
		assert.NoError(t, err)
		assert.Len(t, suggestions, 3)
		for _, s := range suggestions {
			assert.Equal(t, int64(FallbackScore), s.Score)
		}
	})

	t.Run("limit defaults to ten", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()

		_, err := eng.Suggestions(ctx, "u1", 0)
		assert.NoError(t, err)
		assert.Equal(t, DefaultSuggestionLimit, store.ReadCalls[0].Params["limit"])
	})

	t.Run("requester identity is a bound parameter", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()

		_, err := eng.Suggestions(ctx, "u1", 3)
		assert.NoError(t, err)
		assert.Equal(t, "u1", store.ReadCalls[0].Params["userId"])
	})

	t.Run("malformed id rejected before any read", func(t *testing.T) {
		eng, store, _, _ := newTestEngine()

		_, err := eng.Suggestions(ctx, " ", 3)
		assert.Error(t, err)
		assert.Empty(t, store.ReadCalls)
	})
}
