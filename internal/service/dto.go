package service

// CreatePostRequest carries the raw caller payload. Datetime is extracted for
// validation; Fields is the full decoded body, passed through opaquely.
type CreatePostRequest struct {
	Datetime string `validate:"required"`
	Fields   map[string]any
}

// authorEmail digs the author email out of a caller-supplied field map.
// Returns "" when no author object (or no email) is present.
func authorEmail(fields map[string]any) string {
	author, ok := fields["author"].(map[string]any)
	if !ok {
		return ""
	}
	email, _ := author["email"].(string)
	return email
}
