package httpapi

import (
	"maps"

	"microblog/internal/model"
)

// displayTimeFormat renders stored timestamps the way the UI shows them.
const displayTimeFormat = "January 2, 2006 at 3:04:05 PM MST"

// postResponse flattens a post back into the caller's field map, with the id,
// the likes set and the display-formatted datetime on top.
func postResponse(p model.Post) map[string]any {
	out := maps.Clone(p.Fields)
	if out == nil {
		out = make(map[string]any)
	}
	out["id"] = p.ID
	out["likes"] = p.Likes
	out["datetime"] = p.CreatedAt.Format(displayTimeFormat)
	return out
}

func postListResponse(posts []model.Post) []map[string]any {
	out := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse(p))
	}
	return out
}
