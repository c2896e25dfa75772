package engine

// Cypher templates for all relationship operations. Each mutation is one
// composite statement: the precondition match and the write clause execute
// inside a single store transaction, so check-then-act races between
// concurrent callers are resolved by the store's own concurrency control.
// User identifiers are always bound parameters.

// sendRequest lazily anchors both user nodes, then creates the request
// edge only when no FRIEND_REQUEST or FRIENDS edge exists between the
// pair in either direction. Zero returned rows means the relationship
// already existed; the node merge still commits, which is harmless.
const cypherSendRequest = `
MERGE (a:User {userId: $from})
ON CREATE SET a.createdAt = $now
MERGE (b:User {userId: $to})
ON CREATE SET b.createdAt = $now
WITH a, b
OPTIONAL MATCH (a)-[existing:FRIEND_REQUEST|FRIENDS]-(b)
WITH a, b, existing
WHERE existing IS NULL
CREATE (a)-[r:FRIEND_REQUEST {createdAt: $now}]->(b)
RETURN a.userId AS fromId, b.userId AS toId, r.createdAt AS createdAt
`

// acceptRequest deletes the pending request and writes both FRIENDS
// directions in the same statement, so the symmetric edge can never be
// observed half-written.
const cypherAcceptRequest = `
MATCH (a:User {userId: $from})-[r:FRIEND_REQUEST]->(b:User {userId: $to})
DELETE r
CREATE (a)-[:FRIENDS {since: $now}]->(b)
CREATE (b)-[:FRIENDS {since: $now}]->(a)
RETURN a.userId AS fromId, b.userId AS toId
`

// deleteRequest removes a pending request without replacement. Shared by
// reject (receiver side) and cancel (sender side).
const cypherDeleteRequest = `
MATCH (a:User {userId: $from})-[r:FRIEND_REQUEST]->(b:User {userId: $to})
DELETE r
RETURN a.userId AS fromId
`

// removeFriend matches the friendship undirected so both directional
// edges are deleted together. The aggregate row reports how many edges
// actually went away.
const cypherRemoveFriend = `
MATCH (a:User {userId: $userId})-[r:FRIENDS]-(b:User {userId: $friendId})
DELETE r
RETURN count(r) AS removed
`

const cypherFriends = `
MATCH (u:User {userId: $userId})-[:FRIENDS]->(friend:User)
RETURN friend
ORDER BY friend.userId
`

const cypherIncomingRequests = `
MATCH (sender:User)-[:FRIEND_REQUEST]->(u:User {userId: $userId})
RETURN sender
ORDER BY sender.userId
`

const cypherOutgoingRequests = `
MATCH (u:User {userId: $userId})-[:FRIEND_REQUEST]->(receiver:User)
RETURN receiver
ORDER BY receiver.userId
`

// status probes all three edge forms in one read. Precedence between
// conflicting probes is resolved in Go, see domain.ResolveStatus.
const cypherStatus = `
MATCH (a:User {userId: $a}), (b:User {userId: $b})
RETURN EXISTS { (a)-[:FRIENDS]-(b) } AS friends,
       EXISTS { (a)-[:FRIEND_REQUEST]->(b) } AS sent,
       EXISTS { (b)-[:FRIEND_REQUEST]->(a) } AS pending
`

// suggestionsPrimary ranks friends-of-friends by shared friend count.
// The score is mutualFriends*2, so a primary candidate can never collide
// with the reserved fallback score of 1. Ordering is deterministic: score,
// then mutual count, then the user id as a stable tiebreak.
const cypherSuggestionsPrimary = `
MATCH (u:User {userId: $userId})-[:FRIENDS]->(f:User)-[:FRIENDS]->(s:User)
WHERE s.userId <> $userId
  AND NOT EXISTS { (u)-[:FRIENDS]-(s) }
  AND NOT EXISTS { (u)-[:FRIEND_REQUEST]-(s) }
WITH s, count(DISTINCT f) AS mutualFriends
RETURN s AS suggestion, mutualFriends, mutualFriends * 2 AS score
ORDER BY score DESC, mutualFriends DESC, s.userId
LIMIT $limit
`

// suggestionsFallback backfills with unrelated users when the primary set
// is short. Candidates already collected are excluded through the bound
// $exclude list, so the merged result needs no further deduplication.
const cypherSuggestionsFallback = `
MATCH (u:User {userId: $userId})
MATCH (s:User)
WHERE s.userId <> $userId
  AND NOT s.userId IN $exclude
  AND NOT EXISTS { (u)-[:FRIENDS]-(s) }
  AND NOT EXISTS { (u)-[:FRIEND_REQUEST]-(s) }
RETURN s AS suggestion
ORDER BY rand()
LIMIT $limit
`
