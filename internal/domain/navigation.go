package domain

import "fmt"

// Navigation intents are opaque site-relative paths. The list layer never
// interprets them; the opener joins them with the site URL.

// TopicPath returns the path of a topic page
func TopicPath(id int64) string {
	return fmt.Sprintf("/topics/%d", id)
}

// UserPath returns the path of a user's profile
func UserPath(login string) string {
	return "/" + login
}

// NodePath returns the path of a node's topic list
func NodePath(id int64) string {
	return fmt.Sprintf("/topics/node%d", id)
}
