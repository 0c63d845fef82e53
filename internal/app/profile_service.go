package app

import (
	"strings"

	"docuchat/internal/model"
)

type ProfileStore interface {
	GetByOwner(ownerID string) (*model.Profile, error)
	Upsert(profile *model.Profile) error
}

type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

type UpdateProfileInput struct {
	OwnerID     string
	DisplayName string
	Bio         string
}

func (s *ProfileService) Update(input UpdateProfileInput) (*model.Profile, error) {
	if input.OwnerID == "" {
		return nil, ErrInvalidInput
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, ErrInvalidInput
	}

	profile := &model.Profile{
		OwnerID:     input.OwnerID,
		DisplayName: displayName,
		Bio:         strings.TrimSpace(input.Bio),
	}
	if err := s.profiles.Upsert(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Get(ownerID string) (*model.Profile, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.profiles.GetByOwner(ownerID)
}
