package models

// PostThread is the detail view of a post: the post with its author plus a
// two-level comment tree. Replies to replies exist in storage but are not
// expanded further here.
type PostThread struct {
	Post     *Post           `json:"post"`
	Comments []ThreadComment `json:"comments"`
}

// ThreadComment is a top-level comment with its direct replies.
type ThreadComment struct {
	*Comment
	Replies []*Comment `json:"replies"`
}
