package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairChatID_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairChatID("alice", "bob"), PairChatID("bob", "alice"))
	assert.NotEqual(t, PairChatID("alice", "bob"), PairChatID("alice", "carol"))
}

func TestPairChatID_DistinctPairsNeverCollide(t *testing.T) {
	// User ids can themselves contain any separator a join could pick, so
	// pairs whose concatenations coincide must still get distinct ids.
	assert.NotEqual(t, PairChatID("a", "b_c"), PairChatID("a_b", "c"))
	assert.NotEqual(t, PairChatID("a", "bc"), PairChatID("ab", "c"))
	assert.NotEqual(t, PairChatID("a|b", "c"), PairChatID("a", "b|c"))
}

func TestPairChatID_SafeInURLPaths(t *testing.T) {
	id := PairChatID("user#1", "user/2?x=y")
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, "?")
	assert.NotContains(t, id, "#")
}

func TestChatParticipantHelpers(t *testing.T) {
	chat := Chat{ParticipantIDs: []string{"alice", "bob"}}

	assert.True(t, chat.HasParticipant("alice"))
	assert.False(t, chat.HasParticipant("mallory"))
	assert.Equal(t, "bob", chat.OtherParticipant("alice"))
	assert.Equal(t, "alice", chat.OtherParticipant("bob"))
}

func TestActiveTypingUsers(t *testing.T) {
	now := time.Now()
	chat := Chat{TypingUsers: map[string]string{
		"alice":   FormatTimestamp(now.Add(5 * time.Second)),
		"bob":     FormatTimestamp(now.Add(-5 * time.Second)),
		"mangled": "not-a-timestamp",
	}}

	assert.Equal(t, []string{"alice"}, chat.ActiveTypingUsers(now))
}

func TestFormatTimestamp_LexicographicOrder(t *testing.T) {
	// The fixed-width fraction keeps string order equal to time order even
	// when the nanosecond part ends in zeros.
	earlier := FormatTimestamp(time.Date(2026, 3, 1, 12, 0, 1, 500_000_000, time.UTC))
	later := FormatTimestamp(time.Date(2026, 3, 1, 12, 0, 1, 530_000_000, time.UTC))

	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))
}
