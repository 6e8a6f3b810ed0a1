package forum

import (
	"time"

	"github.com/mmcdole/topics/internal/domain"
)

// MapTopics converts topic DTOs to domain topics, preserving server order
func MapTopics(dtos []TopicDTO) []domain.Topic {
	topics := make([]domain.Topic, 0, len(dtos))
	for _, d := range dtos {
		topics = append(topics, mapTopic(d))
	}
	return topics
}

func mapTopic(d TopicDTO) domain.Topic {
	t := domain.Topic{
		ID:    d.ID,
		Title: d.Title,
		User: domain.User{
			ID:        d.User.ID,
			Login:     d.User.Login,
			Name:      d.User.Name,
			AvatarURL: d.User.AvatarURL,
		},
		NodeID:       d.NodeID,
		NodeName:     d.NodeName,
		RepliesCount: d.RepliesCount,
		CreatedAt:    parseTime(d.CreatedAt),
		Excellent:    d.Excellent,
		Deleted:      d.Deleted,
	}
	if d.RepliedAt != nil {
		t.RepliedAt = parseTime(*d.RepliedAt)
	}
	if d.LastReplyUserLogin != nil {
		t.LastReplyUserLogin = *d.LastReplyUserLogin
	}
	return t
}

// MapNode converts a node DTO to a domain node
func MapNode(d NodeDTO) domain.Node {
	return domain.Node{
		ID:          d.ID,
		Name:        d.Name,
		Summary:     d.Summary,
		TopicsCount: d.TopicsCount,
		SectionName: d.SectionName,
	}
}

// MapNodes converts node DTOs to domain nodes
func MapNodes(dtos []NodeDTO) []domain.Node {
	nodes := make([]domain.Node, 0, len(dtos))
	for _, d := range dtos {
		nodes = append(nodes, MapNode(d))
	}
	return nodes
}

// parseTime parses the API's RFC3339 timestamps; unparseable values map to zero
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
