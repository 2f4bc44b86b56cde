package filestore

import (
	"context"
	"sort"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
)

func (s *Store) loadRequests() ([]model.ModificationRequest, error) {
	var reqs []model.ModificationRequest
	if _, err := readJSON(s.path(requestsFile), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) ListRequests(_ context.Context, status *model.RequestStatus) ([]model.ModificationRequest, error) {
	s.mu.Lock()
	reqs, err := s.loadRequests()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := []model.ModificationRequest{}
	for _, r := range reqs {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetRequest(_ context.Context, id string) (model.ModificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.loadRequests()
	if err != nil {
		return model.ModificationRequest{}, err
	}
	for _, r := range reqs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.ModificationRequest{}, storage.ErrNotFound
}

func (s *Store) CreateRequest(_ context.Context, r model.ModificationRequest) (model.ModificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.loadRequests()
	if err != nil {
		return model.ModificationRequest{}, err
	}
	reqs = append(reqs, r)
	if err := writeJSON(s.path(requestsFile), reqs); err != nil {
		return model.ModificationRequest{}, err
	}
	return r, nil
}

func (s *Store) UpdateRequestStatus(_ context.Context, id string, status model.RequestStatus, adminComment *string, at time.Time) (model.ModificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.loadRequests()
	if err != nil {
		return model.ModificationRequest{}, err
	}
	for i := range reqs {
		if reqs[i].ID != id {
			continue
		}
		if reqs[i].Status != model.RequestPending {
			return reqs[i], storage.ErrNotPending
		}
		reqs[i].Status = status
		reqs[i].UpdatedAt = at
		if adminComment != nil {
			reqs[i].AdminComment = adminComment
		}
		if err := writeJSON(s.path(requestsFile), reqs); err != nil {
			return model.ModificationRequest{}, err
		}
		return reqs[i], nil
	}
	return model.ModificationRequest{}, storage.ErrNotFound
}
