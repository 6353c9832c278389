package biz

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/closetmind/closetmind-backend/internal/pkg/logger"
	"github.com/closetmind/closetmind-backend/internal/pkg/minio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// fakeItemRepo 内存等待清单仓库
type fakeItemRepo struct {
	items map[string]*WaitItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*WaitItem)}
}

func (r *fakeItemRepo) Create(ctx context.Context, item *WaitItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*WaitItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) ListByUser(ctx context.Context, userID string) ([]*WaitItem, error) {
	var out []*WaitItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id string) error {
	delete(r.items, id)
	return nil
}

// fakeScreenshotStore 内存对象存储
type fakeScreenshotStore struct {
	objects map[string][]byte
	removed []string
}

func newFakeScreenshotStore() *fakeScreenshotStore {
	return &fakeScreenshotStore{objects: make(map[string][]byte)}
}

func (f *fakeScreenshotStore) PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	return minio.UploadInfo{
		Bucket: "closetmind",
		Key:    objectName,
		Size:   objectSize,
		URL:    "https://cdn.example/closetmind/" + objectName,
	}, nil
}

func (f *fakeScreenshotStore) RemoveObject(ctx context.Context, objectName string) error {
	delete(f.objects, objectName)
	f.removed = append(f.removed, objectName)
	return nil
}

func TestWaitlistUseCase_AddItem_DefaultsToPending(t *testing.T) {
	uc := NewWaitlistUseCase(newFakeItemRepo(), nil, newTestLogger())

	item, err := uc.AddItem(context.Background(), "u1", "https://shop.example/dress.jpg", "")
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "u1", item.UserID)
	assert.Equal(t, StatusPending, item.Status)
	assert.Empty(t, item.ObjectKey)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestWaitlistUseCase_UploadScreenshot_StoresObject(t *testing.T) {
	repo := newFakeItemRepo()
	store := newFakeScreenshotStore()
	uc := NewWaitlistUseCase(repo, store, newTestLogger())

	img := []byte{0x89, 0x50, 0x4e, 0x47}
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)

	item, err := uc.UploadScreenshot(context.Background(), "u1", payload)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(item.ObjectKey, "waitlist/u1/"))
	assert.Equal(t, "https://cdn.example/closetmind/"+item.ObjectKey, item.ImageURL)
	assert.Equal(t, StatusPending, item.Status)
	assert.Equal(t, img, store.objects[item.ObjectKey])
	assert.Contains(t, repo.items, item.ID)
}

func TestWaitlistUseCase_UploadScreenshot_InvalidData(t *testing.T) {
	store := newFakeScreenshotStore()
	uc := NewWaitlistUseCase(newFakeItemRepo(), store, newTestLogger())

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not base64", payload: "data:image/png;base64,@@not-base64@@"},
		{name: "empty payload", payload: "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UploadScreenshot(context.Background(), "u1", tt.payload)
			assert.ErrorIs(t, err, ErrInvalidImageData)
			assert.Empty(t, store.objects)
		})
	}
}

func TestWaitlistUseCase_UploadScreenshot_NoStorage(t *testing.T) {
	uc := NewWaitlistUseCase(newFakeItemRepo(), nil, newTestLogger())

	_, err := uc.UploadScreenshot(context.Background(), "u1", base64.StdEncoding.EncodeToString([]byte("img")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestWaitlistUseCase_DeleteItem_RemovesStoredScreenshot(t *testing.T) {
	repo := newFakeItemRepo()
	store := newFakeScreenshotStore()
	uc := NewWaitlistUseCase(repo, store, newTestLogger())

	payload := base64.StdEncoding.EncodeToString([]byte("screenshot"))
	item, err := uc.UploadScreenshot(context.Background(), "u1", payload)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteItem(context.Background(), "u1", item.ID))

	assert.NotContains(t, repo.items, item.ID)
	assert.Equal(t, []string{item.ObjectKey}, store.removed)
}

func TestWaitlistUseCase_DeleteItem_ExternalURLKeepsStorageUntouched(t *testing.T) {
	repo := newFakeItemRepo()
	store := newFakeScreenshotStore()
	uc := NewWaitlistUseCase(repo, store, newTestLogger())

	item, err := uc.AddItem(context.Background(), "u1", "https://shop.example/dress.jpg", "")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteItem(context.Background(), "u1", item.ID))
	assert.Empty(t, store.removed)
}

func TestWaitlistUseCase_DeleteItem_OwnershipEnforced(t *testing.T) {
	repo := newFakeItemRepo()
	uc := NewWaitlistUseCase(repo, nil, newTestLogger())

	item, err := uc.AddItem(context.Background(), "u1", "https://shop.example/dress.jpg", "")
	require.NoError(t, err)

	err = uc.DeleteItem(context.Background(), "u2", item.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Contains(t, repo.items, item.ID)

	err = uc.DeleteItem(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestWaitlistUseCase_ListItems(t *testing.T) {
	repo := newFakeItemRepo()
	uc := NewWaitlistUseCase(repo, nil, newTestLogger())

	_, err := uc.AddItem(context.Background(), "u1", "https://shop.example/a.jpg", "")
	require.NoError(t, err)
	_, err = uc.AddItem(context.Background(), "u2", "https://shop.example/b.jpg", "")
	require.NoError(t, err)

	items, err := uc.ListItems(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://shop.example/a.jpg", items[0].ImageURL)
}
