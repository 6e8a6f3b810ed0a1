package domain

import (
	"context"
)

// TopicRepository provides paginated access to topic lists.
//
// Implementations return an error wrapping ErrServerOffline when no response
// was received, and a *StatusError when the server answered with a
// non-success status. Pagination is purely offset based.
type TopicRepository interface {
	// ListTopics returns at most limit topics matching the filter,
	// starting at offset
	ListTopics(ctx context.Context, filter Filter, offset, limit int) ([]Topic, error)
}

// NodeRepository provides node metadata
type NodeRepository interface {
	// GetNode returns a single node
	GetNode(ctx context.Context, id int64) (*Node, error)

	// ListNodes returns every node
	ListNodes(ctx context.Context) ([]Node, error)
}

// Source combines all repository interfaces the forum backend implements
type Source interface {
	TopicRepository
	NodeRepository
}
