package domain

import (
	"fmt"
	"strings"
)

// ListType selects the ordering/subset the topics endpoint returns
type ListType string

const (
	ListTypeLastActived ListType = "last_actived"
	ListTypeRecent      ListType = "recent"
	ListTypeNoReply     ListType = "no_reply"
	ListTypePopular     ListType = "popular"
	ListTypeExcellent   ListType = "excellent"
)

// DefaultListType is used when no type is configured
const DefaultListType = ListTypePopular

// ListTypes is the cycle order used by the UI
var ListTypes = []ListType{
	ListTypePopular,
	ListTypeLastActived,
	ListTypeRecent,
	ListTypeNoReply,
	ListTypeExcellent,
}

// Label returns the human-readable name of the list type
func (t ListType) Label() string {
	switch t {
	case ListTypeLastActived:
		return "Active"
	case ListTypeRecent:
		return "Recent"
	case ListTypeNoReply:
		return "No Reply"
	case ListTypePopular:
		return "Popular"
	case ListTypeExcellent:
		return "Excellent"
	default:
		return string(t)
	}
}

// Next returns the following list type in the UI cycle order
func (t ListType) Next() ListType {
	for i, lt := range ListTypes {
		if lt == t {
			return ListTypes[(i+1)%len(ListTypes)]
		}
	}
	return DefaultListType
}

// ParseListType converts a configured or user-supplied name to a ListType.
// Empty input yields DefaultListType.
func ParseListType(s string) (ListType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultListType, nil
	}
	// Accept the UI spellings too
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "active":
		return ListTypeLastActived, nil
	case "noreply":
		return ListTypeNoReply, nil
	}
	for _, lt := range ListTypes {
		if string(lt) == s {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown list type %q", s)
}

// Filter selects which topics a list shows. It is a value type: a list
// session is bound to one Filter for its whole lifetime.
type Filter struct {
	Type   ListType
	NodeID int64 // 0 means all nodes
}

// HasNode reports whether the filter is scoped to a single node
func (f Filter) HasNode() bool {
	return f.NodeID > 0
}

// String returns a compact description for logs
func (f Filter) String() string {
	if f.HasNode() {
		return fmt.Sprintf("%s/node%d", f.Type, f.NodeID)
	}
	return string(f.Type)
}
