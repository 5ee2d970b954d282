package membership

import (
	"context"
	"errors"
)

// Service resolves provider standing for actors.
type Service interface {
	// Resolve returns the caller's capabilities in providerID.
	// Missing or inactive memberships resolve to the zero Capabilities, not an error.
	Resolve(ctx context.Context, providerID, userID string) (Capabilities, error)
	// GetActiveMember returns ErrNotMember unless userID actively belongs to providerID.
	GetActiveMember(ctx context.Context, providerID, userID string) (*Membership, error)
	// GetActiveByID returns ErrNotMember unless the membership exists, is active and belongs to providerID.
	GetActiveByID(ctx context.Context, providerID, membershipID string) (*Membership, error)
}

type service struct {
	repo Repository
}

// NewService creates a new membership service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Resolve(ctx context.Context, providerID, userID string) (Capabilities, error) {
	if providerID == "" || userID == "" {
		return Capabilities{}, nil
	}

	m, err := s.repo.GetActive(ctx, providerID, userID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return Capabilities{}, nil
		}
		return Capabilities{}, err
	}
	return FromMembership(m), nil
}

func (s *service) GetActiveMember(ctx context.Context, providerID, userID string) (*Membership, error) {
	return s.repo.GetActive(ctx, providerID, userID)
}

func (s *service) GetActiveByID(ctx context.Context, providerID, membershipID string) (*Membership, error) {
	m, err := s.repo.GetActiveByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if m.ProviderID != providerID {
		return nil, ErrNotMember
	}
	return m, nil
}
