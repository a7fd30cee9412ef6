package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/catalog"
	"github.com/cloo-solutions/onetool/internal/domain"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) EnabledTools(ctx context.Context) ([]*domain.Tool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tool), args.Error(1)
}

// memoryStore records uploads in memory.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string]storage.PutObjectInput
	puts    []string
	headErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]storage.PutObjectInput{}}
}

func (s *memoryStore) PutObject(ctx context.Context, in storage.PutObjectInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[in.Key] = in
	s.puts = append(s.puts, in.Key)
	return nil
}

func (s *memoryStore) HeadObject(ctx context.Context, key string) (*storage.ObjectMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headErr != nil {
		return nil, s.headErr
	}
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.ObjectMetadata{ContentLength: int64(len(obj.Body)), Metadata: obj.Metadata}, nil
}

type MockSearchLogDeleter struct {
	mock.Mock
}

func (m *MockSearchLogDeleter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
	assert.GreaterOrEqual(t, len(mockProcessor.Calls), 2)
}

func TestWorker_RunsImmediately(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("ignored"))

	worker := NewWorker("test", mockProcessor, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	mockProcessor.AssertNumberOfCalls(t, "ProcessJobs", 1)
}

func TestSnapshotExporter_ExportsOnChange(t *testing.T) {
	ctx := context.Background()
	source := new(MockCatalogSource)
	store := newMemoryStore()

	tools := catalog.Builtin()
	source.On("EnabledTools", mock.Anything).Return(tools, nil).Twice()

	exporter := NewSnapshotExporter(source, store)
	exporter.now = func() time.Time { return time.Unix(1700000000, 0) }

	uploaded, err := exporter.Export(ctx)
	require.NoError(t, err)
	assert.True(t, uploaded)
	assert.Equal(t, []string{"catalog/1700000000.json", SnapshotLatestKey}, store.puts)

	latest := store.objects[SnapshotLatestKey]
	assert.Equal(t, "application/json", latest.ContentType)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(latest.Body, &snap))
	assert.Equal(t, len(tools), snap.Count)
	assert.Len(t, snap.Tools, len(tools))
	assert.Equal(t, snap.Hash, latest.Metadata[snapshotHashMeta])
	for i := 1; i < len(snap.Tools); i++ {
		assert.Less(t, snap.Tools[i-1].Slug, snap.Tools[i].Slug)
	}

	uploaded, err = exporter.Export(ctx)
	require.NoError(t, err)
	assert.False(t, uploaded)
	assert.Len(t, store.puts, 2)

	source.On("EnabledTools", mock.Anything).Return(tools[1:], nil).Once()
	exporter.now = func() time.Time { return time.Unix(1700000100, 0) }

	require.NoError(t, exporter.ProcessJobs(ctx))
	assert.Equal(t, []string{"catalog/1700000000.json", SnapshotLatestKey, "catalog/1700000100.json", SnapshotLatestKey}, store.puts)
	source.AssertExpectations(t)
}

func TestSnapshotExporter_SkipsWhenRemoteMatches(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	tools := catalog.Builtin()

	source := new(MockCatalogSource)
	source.On("EnabledTools", mock.Anything).Return(tools, nil)

	first := NewSnapshotExporter(source, store)
	_, err := first.Export(ctx)
	require.NoError(t, err)

	restarted := NewSnapshotExporter(source, store)
	uploaded, err := restarted.Export(ctx)
	require.NoError(t, err)
	assert.False(t, uploaded)
	assert.Len(t, store.puts, 2)
}

func TestSnapshotExporter_SourceError(t *testing.T) {
	source := new(MockCatalogSource)
	source.On("EnabledTools", mock.Anything).Return(nil, errors.New("db down"))

	exporter := NewSnapshotExporter(source, newMemoryStore())
	err := exporter.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestSnapshotExporter_HeadErrorStillExports(t *testing.T) {
	store := newMemoryStore()
	store.headErr = errors.New("forbidden")

	source := new(MockCatalogSource)
	source.On("EnabledTools", mock.Anything).Return(catalog.Builtin(), nil)

	uploaded, err := NewSnapshotExporter(source, store).Export(context.Background())
	require.NoError(t, err)
	assert.True(t, uploaded)
}

func TestSearchLogPruner(t *testing.T) {
	repo := new(MockSearchLogDeleter)
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	repo.On("DeleteOlderThan", mock.Anything, now.Add(-DefaultSearchLogRetention)).Return(int64(4), nil)

	pruner := NewSearchLogPruner(repo, 0)
	pruner.now = func() time.Time { return now }

	require.NoError(t, pruner.ProcessJobs(context.Background()))
	repo.AssertExpectations(t)
}

func TestSearchLogPruner_Error(t *testing.T) {
	repo := new(MockSearchLogDeleter)
	repo.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	err := NewSearchLogPruner(repo, time.Hour).ProcessJobs(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prune search logs")
}

func TestWorker_RecordsLastRun(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("bucket missing"))

	worker := NewWorker("snapshot", mockProcessor, time.Hour)
	assert.Equal(t, "snapshot", worker.Name())

	at, err := worker.LastRun()
	assert.True(t, at.IsZero())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		at, _ := worker.LastRun()
		return !at.IsZero()
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	_, err = worker.LastRun()
	assert.EqualError(t, err, "bucket missing")
}
