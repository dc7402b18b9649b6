package dto

import "time"

// ShareRequest is the JSON body for POST /nottodos/:id/share.
type ShareRequest struct {
	Username string `json:"username" binding:"required,min=1,max=120"`
}

// CommentRequest is the JSON body for POST /shared/:id/comments.
type CommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

type CommentResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SharedNotToDoResponse is one entry in the "shared with me" list.
type SharedNotToDoResponse struct {
	ID       int64             `json:"id"`
	SharedAt time.Time         `json:"shared_at"`
	Item     NotToDoResponse   `json:"item"`
	Comments []CommentResponse `json:"comments"`
}

type ListSharedResponse struct {
	Items []SharedNotToDoResponse `json:"items"`
}
