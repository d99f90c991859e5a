package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// LastMessage is the denormalized preview stored on the chat document.
type LastMessage struct {
	Text      string `dynamodbav:"text" json:"text"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// Chat is the single conversation document for a matched pair.
// TypingUsers maps a userId to the deadline after which its flag is ignored.
type Chat struct {
	ChatID         string            `dynamodbav:"chatId" json:"chatId"`
	ParticipantIDs []string          `dynamodbav:"participantIds" json:"participantIds"`
	CreatedAt      string            `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string            `dynamodbav:"updatedAt" json:"updatedAt"`
	LastMessage    *LastMessage      `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	TypingUsers    map[string]string `dynamodbav:"typingUsers,omitempty" json:"-"`
	UnreadCount    map[string]int    `dynamodbav:"unreadCount" json:"unreadCount"`
}

// PairChatID derives the deterministic chat id for an unordered user pair.
// Both sides of a mutual hint compute the same id, which makes the
// conditional create the single synchronization point for chat uniqueness.
// The sorted ids are length-prefixed before hashing: identity providers put
// arbitrary characters in user ids, so no separator is collision-free, but
// the prefix makes the encoding unambiguous. The hex digest is safe inside
// URL paths.
func PairChatID(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s|%d:%s", len(pair[0]), pair[0], len(pair[1]), pair[1])))
	return hex.EncodeToString(sum[:])
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID string) string {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// HasParticipant reports whether userID belongs to the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ActiveTypingUsers filters out expired typing flags as of now.
func (c *Chat) ActiveTypingUsers(now time.Time) []string {
	users := make([]string, 0, len(c.TypingUsers))
	for userID, deadline := range c.TypingUsers {
		t, err := time.Parse(TimestampLayout, deadline)
		if err != nil {
			continue
		}
		if now.Before(t) {
			users = append(users, userID)
		}
	}
	sort.Strings(users)
	return users
}

// ChatsTable is the DynamoDB table name for chats
const ChatsTable = "Chats"
