package domain

import (
	"fmt"
	"strconv"
	"time"
)

// User is the author of a topic
type User struct {
	ID        int64
	Login     string // Unique handle, also the profile path segment
	Name      string // Display name (may be empty)
	AvatarURL string
}

// DisplayName returns the name if set, otherwise the login
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// Topic represents a single forum topic as returned by the list endpoint.
// Topics are immutable once received; a refresh replaces them wholesale.
type Topic struct {
	ID       int64  // Server-assigned unique identifier
	Title    string // Display title
	User     User   // Author
	NodeID   int64  // Node (category) the topic belongs to
	NodeName string // Node display name

	RepliesCount       int
	LastReplyUserLogin string // Empty when there are no replies

	CreatedAt time.Time
	RepliedAt time.Time // Zero when there are no replies

	Excellent bool // Marked as an excellent topic by moderators
	Deleted   bool
}

// Key returns the stable identity of the topic
func (t Topic) Key() string {
	return strconv.FormatInt(t.ID, 10)
}

// ActivityAt returns the time of the last reply, or the creation time when
// the topic has no replies yet
func (t Topic) ActivityAt() time.Time {
	if !t.RepliedAt.IsZero() {
		return t.RepliedAt
	}
	return t.CreatedAt
}

// FormattedReplies returns the reply count for list rows (e.g., "12 replies")
func (t Topic) FormattedReplies() string {
	switch t.RepliesCount {
	case 0:
		return "no replies"
	case 1:
		return "1 reply"
	default:
		return fmt.Sprintf("%d replies", t.RepliesCount)
	}
}

// Node is a topic category
type Node struct {
	ID          int64
	Name        string
	Summary     string
	TopicsCount int
	SectionName string // Group the node is listed under
}
