package tableinfo

const (
	PostsTableName = "posts"

	PostIDColumn          = "id"
	PostAuthorEmailColumn = "author_email"
	PostCreatedAtColumn   = "created_at"
	PostLikesColumn       = "likes"
	PostDocColumn         = "doc"
)
