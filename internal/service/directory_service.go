// Package service provides application business logic (directory, messages, stories, feed).
package service

import (
	"context"

	"realtime/internal/models"
	"realtime/internal/repository"
)

// DirectoryService provides user lookup and friend-edge business logic.
type DirectoryService struct {
	userRepo repository.UserRepository
}

// NewDirectoryService returns a new DirectoryService.
func NewDirectoryService(userRepo repository.UserRepository) *DirectoryService {
	return &DirectoryService{userRepo: userRepo}
}

// GetUser returns the user record for the given id.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns directory records, optionally filtered by name or email.
func (s *DirectoryService) ListUsers(ctx context.Context, filter string, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, filter, limit, offset)
}

// GetFriends returns the user records behind the user's friend edges.
func (s *DirectoryService) GetFriends(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetFriends(ctx, userID)
}

// AddFriend adds a one-directional friend edge from userID to friendID.
// Adding an existing friend is a no-op. The reverse edge is never created;
// whether friendship should be mutual is a product decision this layer does
// not assume.
func (s *DirectoryService) AddFriend(ctx context.Context, userID, friendID string) error {
	if friendID == "" {
		return models.NewValidationError("Friend id is required")
	}
	if userID == friendID {
		return models.NewValidationError("Cannot add yourself as a friend")
	}
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}
	return s.userRepo.AddFriend(ctx, userID, friendID)
}

// UpdateImageRefs sets the user's profile and/or banner image references.
// Empty arguments leave the corresponding field untouched.
func (s *DirectoryService) UpdateImageRefs(ctx context.Context, userID, profileRef, bannerRef string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profileRef != "" {
		user.ProfileImageRef = profileRef
	}
	if bannerRef != "" {
		user.BannerImageRef = bannerRef
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
