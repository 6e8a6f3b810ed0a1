package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

// DefaultNodeLabel is shown when a node's name cannot be resolved
const DefaultNodeLabel = "Node"

// TitleService resolves the header label for a list. Resolution is
// best-effort: failures fall back to a default label and are never surfaced.
type TitleService struct {
	repo   domain.NodeRepository
	logger zerolog.Logger
}

// NewTitleService creates a new title service
func NewTitleService(repo domain.NodeRepository, logger zerolog.Logger) *TitleService {
	return &TitleService{
		repo:   repo,
		logger: logger.With().Str("component", "title").Logger(),
	}
}

// Placeholder returns the label to show before Resolve completes
func (s *TitleService) Placeholder(filter domain.Filter) string {
	if filter.HasNode() {
		return DefaultNodeLabel
	}
	return filter.Type.Label()
}

// Resolve returns the node name for node-scoped filters and the list type
// label otherwise. Unscoped filters never touch the network.
func (s *TitleService) Resolve(ctx context.Context, filter domain.Filter) string {
	if !filter.HasNode() {
		return filter.Type.Label()
	}

	node, err := s.repo.GetNode(ctx, filter.NodeID)
	if err != nil || node == nil || node.Name == "" {
		s.logger.Debug().Err(err).Int64("node_id", filter.NodeID).Msg("node title unavailable")
		return DefaultNodeLabel
	}
	return node.Name
}

// ResolveAsync runs Resolve on its own goroutine. The channel is buffered and
// receives exactly one label, so callers may stop listening.
func (s *TitleService) ResolveAsync(ctx context.Context, filter domain.Filter) <-chan string {
	out := make(chan string, 1)
	go func() {
		out <- s.Resolve(ctx, filter)
	}()
	return out
}
