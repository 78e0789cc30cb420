package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/database/memory"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/domain"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type fakeFileStorage struct {
	mu        sync.Mutex
	uploadErr error
	uploaded  map[string][]byte
	deleted   []string
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{uploaded: make(map[string][]byte)}
}

func (f *fakeFileStorage) UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[key] = data
	return "https://cdn.example.com/moments/" + key, nil
}

func (f *fakeFileStorage) DeleteFile(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	payloads []payloads.ImageCleanupPayload
}

func (p *recordingPublisher) PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

// failingMoments оборачивает хранилище и ломает запись по требованию.
type failingMoments struct {
	*memory.MomentStorage
	createErr error
	updateErr error
	deleteErr error
	getErr    error
}

func (f *failingMoments) GetMomentByID(ctx context.Context, id uuid.UUID) (*domain.Moment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MomentStorage.GetMomentByID(ctx, id)
}

func (f *failingMoments) CreateMoment(ctx context.Context, m *domain.Moment) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.MomentStorage.CreateMoment(ctx, m)
}

func (f *failingMoments) UpdateMoment(ctx context.Context, m *domain.Moment) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.MomentStorage.UpdateMoment(ctx, m)
}

func (f *failingMoments) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MomentStorage.DeleteMoment(ctx, id)
}
