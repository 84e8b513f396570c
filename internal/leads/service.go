package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("lead not found")
)

type Notifier interface {
	SendLeadNotification(ctx context.Context, lead Lead) (string, error)
}

type Service struct {
	repo     Repository
	location *time.Location
	notifier Notifier
}

func NewService(repo Repository, location *time.Location, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		location: location,
		notifier: notifier,
	}
}

// Record stores the local copy of a relayed submission. The relay has
// already answered the caller by the time this runs; a storage failure
// here never changes what the caller saw.
func (s *Service) Record(ctx context.Context, sub LeadSubmission, relayStatus int, upstreamID string) (Lead, error) {
	sub.Customer.FirstName = strings.TrimSpace(sub.Customer.FirstName)
	sub.Customer.LastName = strings.TrimSpace(sub.Customer.LastName)
	sub.Customer.Address.FormattedAddress = strings.TrimSpace(sub.Customer.Address.FormattedAddress)

	now := time.Now().In(s.location)
	lead := Lead{
		ID:          primitive.NewObjectID().Hex(),
		UpstreamID:  upstreamID,
		Submission:  sub,
		RelayStatus: relayStatus,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return Lead{}, err
	}

	return lead, nil
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) GetAdminByID(ctx context.Context, id string) (Lead, error) {
	lead, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Lead, error) {
	id = strings.TrimSpace(id)
	status = strings.ToLower(strings.TrimSpace(status))
	if !IsValidStatus(status) {
		return Lead{}, ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, time.Now().In(s.location))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return updated, nil
}

func (s *Service) NotifyLead(ctx context.Context, lead Lead) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendLeadNotification(ctx, lead)
	return err
}
