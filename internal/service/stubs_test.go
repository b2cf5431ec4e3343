package service

import (
	"context"

	"sellerhood/internal/models"
)

type userRepoStub struct {
	createFn               func(context.Context, *models.User) error
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByIDFn              func(context.Context, uint) (*models.User, error)
	createProfileFn        func(context.Context, *models.Profile) error
	getProfileByUserIDFn   func(context.Context, uint) (*models.Profile, error)
	updatePasswordFn       func(context.Context, uint, string) error
	createPasswordResetFn  func(context.Context, *models.PasswordReset) error
	consumePasswordResetFn func(context.Context, string) (*models.PasswordReset, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return s.createProfileFn(ctx, profile)
}
func (s *userRepoStub) GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getProfileByUserIDFn(ctx, userID)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	return s.updatePasswordFn(ctx, userID, hash)
}
func (s *userRepoStub) CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	return s.createPasswordResetFn(ctx, reset)
}
func (s *userRepoStub) ConsumePasswordReset(ctx context.Context, token string) (*models.PasswordReset, error) {
	return s.consumePasswordResetFn(ctx, token)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByEmailFn:         func(context.Context, string) (*models.User, error) { return nil, nil },
		getByIDFn:            func(context.Context, uint) (*models.User, error) { return &models.User{ID: 1}, nil },
		createProfileFn:      func(context.Context, *models.Profile) error { return nil },
		getProfileByUserIDFn: func(context.Context, uint) (*models.Profile, error) { return nil, nil },
		updatePasswordFn:     func(context.Context, uint, string) error { return nil },
		createPasswordResetFn: func(context.Context, *models.PasswordReset) error {
			return nil
		},
		consumePasswordResetFn: func(context.Context, string) (*models.PasswordReset, error) {
			return nil, nil
		},
	}
}

type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	listFn               func(context.Context, models.PostFilters) ([]*models.Post, error)
	updateFn             func(context.Context, *models.Post) error
	deleteFn             func(context.Context, uint, uint) error
	incrementViewCountFn func(context.Context, uint) error
	toggleLikeFn         func(context.Context, uint, uint) (*models.LikeResult, error)
	isLikedFn            func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filters models.PostFilters) ([]*models.Post, error) {
	return s.listFn(ctx, filters)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id, authorID uint) error {
	return s.deleteFn(ctx, id, authorID)
}
func (s *postRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementViewCountFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeResult, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "글", Content: "내용", AuthorID: 1, Category: models.CategoryTips}, nil
		},
		listFn:               func(context.Context, models.PostFilters) ([]*models.Post, error) { return nil, nil },
		updateFn:             func(context.Context, *models.Post) error { return nil },
		deleteFn:             func(context.Context, uint, uint) error { return nil },
		incrementViewCountFn: func(context.Context, uint) error { return nil },
		toggleLikeFn: func(context.Context, uint, uint) (*models.LikeResult, error) {
			return &models.LikeResult{IsLiked: true, NewLikeCount: 1}, nil
		},
		isLikedFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint, uint) (uint, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, commentID, authorID uint) (uint, error) {
	return s.deleteFn(ctx, commentID, authorID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _, _ uint) (uint, error) { return 1, nil },
	}
}
