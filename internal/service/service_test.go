package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chioma/rentledger/internal/domain"
)

// memStore is an in-memory stand-in for the pgx stores. It serializes every
// operation on one mutex, mirroring the row-lock semantics of the real store.
type memStore struct {
	mu         sync.Mutex
	agreements map[uuid.UUID]*domain.Agreement
	order      []uuid.UUID
	payments   map[uuid.UUID][]domain.Payment
	seq        map[int]int64
	seqCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		agreements: make(map[uuid.UUID]*domain.Agreement),
		payments:   make(map[uuid.UUID][]domain.Payment),
		seq:        make(map[int]int64),
	}
}

func (m *memStore) Insert(_ context.Context, a *domain.Agreement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.agreements[a.ID] = &cp
	m.order = append(m.order, a.ID)
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*domain.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agreements[id]
	if !ok {
		return nil, domain.ErrAgreementNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) Mutate(_ context.Context, id uuid.UUID, fn func(*domain.Agreement) error) (*domain.Agreement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agreements[id]
	if !ok {
		return nil, domain.ErrAgreementNotFound
	}
	cp := *a
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.agreements[id] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) List(_ context.Context, q domain.AgreementQuery) ([]domain.Agreement, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Agreement
	for _, id := range m.order {
		a := m.agreements[id]
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		if q.LandlordID != nil && a.LandlordID != *q.LandlordID {
			continue
		}
		if q.TenantID != nil && a.TenantID != *q.TenantID {
			continue
		}
		if q.AgentID != nil && (a.AgentID == nil || *a.AgentID != *q.AgentID) {
			continue
		}
		if q.PropertyID != nil && a.PropertyID != *q.PropertyID {
			continue
		}
		matched = append(matched, *a)
	}

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memStore) NextSequence(_ context.Context, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqCalls++
	m.seq[year]++
	return m.seq[year], nil
}

func (m *memStore) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.agreements {
		if a.Status == domain.StatusActive && a.EndDate.Before(now) {
			a.Status = domain.StatusExpired
			a.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memStore) Record(_ context.Context, agreementID uuid.UUID, record func(*domain.Agreement) (*domain.Payment, error)) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agreements[agreementID]
	if !ok {
		return nil, domain.ErrAgreementNotFound
	}
	cp := *a
	p, err := record(&cp)
	if err != nil {
		return nil, err
	}
	m.agreements[agreementID] = &cp
	m.payments[agreementID] = append(m.payments[agreementID], *p)
	return p, nil
}

func (m *memStore) ListByAgreement(_ context.Context, agreementID uuid.UUID) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Payment, len(m.payments[agreementID]))
	copy(out, m.payments[agreementID])
	// Most recent payment date first, matching the SQL ordering.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].PaymentDate.After(out[i].PaymentDate) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
