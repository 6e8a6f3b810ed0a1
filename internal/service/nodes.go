package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/mmcdole/topics/internal/domain"
)

// NodeService lists nodes for the node picker and searches them by name.
// The node list is fetched once per process and kept in memory only.
type NodeService struct {
	repo   domain.NodeRepository
	logger zerolog.Logger

	mu     sync.Mutex
	nodes  []domain.Node
	loaded bool
}

// NewNodeService creates a new node service
func NewNodeService(repo domain.NodeRepository, logger zerolog.Logger) *NodeService {
	return &NodeService{
		repo:   repo,
		logger: logger.With().Str("component", "nodes").Logger(),
	}
}

// Nodes returns every node, sorted by section then name. A failed fetch is
// not memoized, so the next call tries again.
func (s *NodeService) Nodes(ctx context.Context) ([]domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.nodes, nil
	}

	nodes, err := s.repo.ListNodes(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list nodes")
		return nil, err
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SectionName != nodes[j].SectionName {
			return nodes[i].SectionName < nodes[j].SectionName
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})

	s.nodes = nodes
	s.loaded = true
	s.logger.Info().Int("count", len(nodes)).Msg("loaded nodes")
	return nodes, nil
}

// Search ranks nodes whose name fuzzily matches query, best match first.
// An empty query returns every node.
func (s *NodeService) Search(ctx context.Context, query string) ([]domain.Node, error) {
	nodes, err := s.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	return MatchNodes(nodes, query), nil
}

// MatchNodes ranks nodes against query using case-insensitive, normalized
// fuzzy matching
func MatchNodes(nodes []domain.Node, query string) []domain.Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return nodes
	}

	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]domain.Node, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, nodes[r.OriginalIndex])
	}
	return out
}
