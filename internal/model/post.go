package model

import "time"

// Post is a schemaless blog post. ID, AuthorEmail, CreatedAt and Likes are
// extracted from the document for querying and authorization; Fields holds
// every caller-supplied field (including the author object and the duplicated
// id) untouched.
type Post struct {
	ID          string
	AuthorEmail string
	CreatedAt   time.Time
	Likes       []string
	Fields      map[string]any
}

// HasLike reports whether email is in the post's likes set.
func (p Post) HasLike(email string) bool {
	for _, e := range p.Likes {
		if e == email {
			return true
		}
	}
	return false
}
