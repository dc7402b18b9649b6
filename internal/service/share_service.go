package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/repo"
	"github.com/suchockipawel/nottodo/internal/utils"

	"github.com/jackc/pgx/v5"
)

var (
	ErrAlreadyShared = errors.New("already shared with this user")
	ErrShareWithSelf = errors.New("cannot share an item with yourself")
)

// SharedView is a share joined with its item and comments, for display.
type SharedView struct {
	Share    dom.SharedNotToDo
	Item     dom.NotToDo
	Comments []dom.Comment
}

// ShareService handles sharing and commenting.
type ShareService struct {
	shares   repo.ShareRepo
	nottodos repo.NotToDoRepo
	users    repo.UserRepo
}

// NewShareService returns a new ShareService.
func NewShareService(shares repo.ShareRepo, nottodos repo.NotToDoRepo, users repo.UserRepo) *ShareService {
	return &ShareService{shares: shares, nottodos: nottodos, users: users}
}

// Share grants username read access to the owner's item.
func (s *ShareService) Share(ctx context.Context, ownerID, nottodoID int64, username string) (dom.SharedNotToDo, error) {
	username = strings.TrimSpace(username)
	if _, err := s.nottodos.GetByID(ctx, ownerID, nottodoID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.SharedNotToDo{}, ErrNotFound
		}
		return dom.SharedNotToDo{}, err
	}
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.SharedNotToDo{}, ErrNotFound
		}
		return dom.SharedNotToDo{}, err
	}
	if target.ID == ownerID {
		return dom.SharedNotToDo{}, ErrShareWithSelf
	}
	share, err := s.shares.Create(ctx, nottodoID, target.ID)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.SharedNotToDo{}, ErrAlreadyShared
		}
		return dom.SharedNotToDo{}, err
	}
	return share, nil
}

// ListShared returns everything shared with the user, with comments.
func (s *ShareService) ListShared(ctx context.Context, userID int64) ([]SharedView, error) {
	shares, err := s.shares.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]SharedView, 0, len(shares))
	for _, sw := range shares {
		comments, err := s.shares.ListComments(ctx, sw.Share.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, SharedView{Share: sw.Share, Item: sw.Item, Comments: comments})
	}
	return views, nil
}

// Unshare removes a share the user received.
func (s *ShareService) Unshare(ctx context.Context, userID, shareID int64) error {
	if _, err := s.shares.GetForUser(ctx, userID, shareID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.shares.Delete(ctx, userID, shareID)
}

// AddComment leaves a comment on a share the user received.
func (s *ShareService) AddComment(ctx context.Context, userID, shareID int64, text string) (dom.Comment, error) {
	text = strings.TrimSpace(text)
	if _, err := s.shares.GetForUser(ctx, userID, shareID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Comment{}, ErrNotFound
		}
		return dom.Comment{}, err
	}
	return s.shares.AddComment(ctx, shareID, userID, text)
}
