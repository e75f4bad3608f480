// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/taibuivan/readanddownload/internal/platform/dberr"
	"github.com/taibuivan/readanddownload/internal/platform/notify"
)

// # Mocks

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, record *Record) error {
	args := m.Called(ctx, record)
	if id, ok := args.Get(0).(string); ok && args.Error(1) == nil {
		record.ID = id
	}
	return args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]*Record, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).([]*Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) CountWhere(ctx context.Context, field CountField, value string) (int64, error) {
	args := m.Called(ctx, field, value)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, record *Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockRepository) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Patch(ctx context.Context, service notify.Service, path, bearer string, payload any) error {
	return m.Called(ctx, service, path, bearer, payload).Error(0)
}

// # In-memory fakes

// memoryRepository keeps records in insertion order and enforces unique isbns.
type memoryRepository struct {
	mu      sync.Mutex
	records []*Record
	nextID  int
	failure error
}

func (m *memoryRepository) Create(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	for _, r := range m.records {
		if r.ISBN == record.ISBN {
			return dberr.ErrDuplicate.WithCause(errors.New("duplicate isbn"))
		}
	}

	m.nextID++
	record.ID = fmt.Sprintf("%024x", m.nextID)
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return nil, m.failure
	}
	for _, r := range m.records {
		if r.ID == id {
			found := *r
			return &found, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) FindAll(_ context.Context) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return nil, m.failure
	}
	out := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		found := *r
		out = append(out, &found)
	}
	return out, nil
}

func (m *memoryRepository) CountWhere(_ context.Context, field CountField, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return 0, m.failure
	}
	var count int64
	for _, r := range m.records {
		if (field == ByISBN && r.ISBN == value) || (field == ByUser && r.UserID == value) {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepository) Update(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	for i, r := range m.records {
		if r.ID == record.ID {
			updated := *record
			m.records[i] = &updated
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (m *memoryRepository) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (m *memoryRepository) Ping(context.Context) error {
	return m.failure
}

type patchCall struct {
	Service notify.Service
	Path    string
	Bearer  string
	Payload any
}

// recordingNotifier remembers every push and answers with failure.
type recordingNotifier struct {
	mu      sync.Mutex
	calls   []patchCall
	failure error
}

func (n *recordingNotifier) Patch(_ context.Context, service notify.Service, path, bearer string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.calls = append(n.calls, patchCall{Service: service, Path: path, Bearer: bearer, Payload: payload})
	return n.failure
}
