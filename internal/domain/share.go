package domain

import "time"

// SharedNotToDo grants another user read access to a Not To Do.
type SharedNotToDo struct {
	ID         int64
	NotToDoID  int64
	SharedWith int64
	CreatedAt  time.Time
}

// Comment is left by the share recipient on a shared Not To Do.
type Comment struct {
	ID              int64
	SharedNotToDoID int64
	UserID          int64
	Text            string
	CreatedAt       time.Time
}

// SharedWithItem is a share joined with the item it points at.
type SharedWithItem struct {
	Share SharedNotToDo
	Item  NotToDo
}
