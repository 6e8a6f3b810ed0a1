package forum

// TopicsResponse is the envelope of GET /api/v3/topics.json
type TopicsResponse struct {
	Topics []TopicDTO `json:"topics"`
}

// NodeResponse is the envelope of GET /api/v3/nodes/{id}.json
type NodeResponse struct {
	Node NodeDTO `json:"node"`
}

// NodesResponse is the envelope of GET /api/v3/nodes.json
type NodesResponse struct {
	Nodes []NodeDTO `json:"nodes"`
}

// UserDTO is the embedded author of a topic
type UserDTO struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TopicDTO represents a topic row in list responses
type TopicDTO struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
	RepliedAt          *string `json:"replied_at"` // null when there are no replies
	RepliesCount       int     `json:"replies_count"`
	NodeName           string  `json:"node_name"`
	NodeID             int64   `json:"node_id"`
	LastReplyUserID    *int64  `json:"last_reply_user_id"`
	LastReplyUserLogin *string `json:"last_reply_user_login"`
	User               UserDTO `json:"user"`
	Deleted            bool    `json:"deleted"`
	Excellent          bool    `json:"excellent"`
}

// NodeDTO represents a node
type NodeDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TopicsCount int    `json:"topics_count"`
	Summary     string `json:"summary,omitempty"`
	SectionID   int64  `json:"section_id,omitempty"`
	SectionName string `json:"section_name,omitempty"`
}
