package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hsms-announcement-api/internal/models"
	appErrors "github.com/noah-isme/hsms-announcement-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deletes++
	// The service only ever invalidates the active-listing prefix.
	for key := range m.entries {
		delete(m.entries, key)
	}
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	var dest []models.Announcement
	hit, err := svc.Get(context.Background(), "key", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Set(context.Background(), "key", dest, time.Minute))
	assert.Zero(t, repo.gets)
	assert.Zero(t, repo.sets)
}

func TestNilCacheServiceIsSafe(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())

	hit, err := svc.Get(context.Background(), "key", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Invalidate(context.Background(), "key*"))
}

func TestListActiveUsesCache(t *testing.T) {
	repo := newMockAnnouncementRepo()
	seedAnnouncement(repo, "cached", nil, dateOffset(5), "2024-05-01T08:00:00Z")

	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnnouncementService(repo, &mockTeacherRepo{}, cacheSvc, time.Minute, validator.New(), zap.NewNop())

	first, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cacheRepo.sets)

	// Second call is served from cache; the announcement store is not hit.
	repo.findErr = assert.AnError
	second, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestMutationsInvalidateActiveCache(t *testing.T) {
	repo := newMockAnnouncementRepo()
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnnouncementService(repo, &mockTeacherRepo{known: map[string]bool{"jdoe": true}}, cacheSvc, time.Minute, validator.New(), zap.NewNop())

	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, cacheRepo.sets)

	_, err = svc.Create(context.Background(), CreateAnnouncementRequest{
		Message:        "Exam Friday",
		ExpirationDate: dateOffset(5),
		Username:       "jdoe",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cacheRepo.deletes)
	assert.Empty(t, cacheRepo.entries)
}
