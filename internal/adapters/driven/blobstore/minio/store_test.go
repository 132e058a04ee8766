package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockAPI) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, dst, src)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

func TestStore_Exists(t *testing.T) {
	api := new(mockAPI)
	store := NewStore(api, map[string]string{"private": "archive-private"}, "prefix")

	t.Run("Found", func(t *testing.T) {
		api.On("StatObject", mock.Anything, "archive-private", "prefix/originals/D1.pdf", mock.Anything).
			Return(minio.ObjectInfo{Size: 10}, nil).Once()

		ok, err := store.Exists(context.Background(), "private", "originals/D1.pdf")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotFound", func(t *testing.T) {
		api.On("StatObject", mock.Anything, "public", "prefix/originals/D1.pdf", mock.Anything).
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()

		ok, err := store.Exists(context.Background(), "public", "originals/D1.pdf")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unavailable", func(t *testing.T) {
		api.On("StatObject", mock.Anything, "public", "prefix/text/D1.txt", mock.Anything).
			Return(minio.ObjectInfo{}, errors.New("connection reset")).Once()

		_, err := store.Exists(context.Background(), "public", "text/D1.txt")
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})

	api.AssertExpectations(t)
}

func TestStore_Move(t *testing.T) {
	api := new(mockAPI)
	store := NewStore(api, nil, "")

	api.On("CopyObject", mock.Anything,
		mock.MatchedBy(func(dst minio.CopyDestOptions) bool {
			return dst.Bucket == "public" && dst.Object == "originals/D1.pdf"
		}),
		mock.MatchedBy(func(src minio.CopySrcOptions) bool {
			return src.Bucket == "private" && src.Object == "originals/D1.pdf"
		}),
	).Return(minio.UploadInfo{}, nil).Once()
	api.On("RemoveObject", mock.Anything, "private", "originals/D1.pdf", mock.Anything).Return(nil).Once()

	require.NoError(t, store.Move(context.Background(), "private", "public", "originals/D1.pdf"))
	api.AssertExpectations(t)
}

func TestStore_MoveSourceMissing(t *testing.T) {
	api := new(mockAPI)
	store := NewStore(api, nil, "")

	api.On("CopyObject", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()

	err := store.Move(context.Background(), "private", "public", "originals/D1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	api.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_MoveTargetBucketMissing(t *testing.T) {
	api := new(mockAPI)
	store := NewStore(api, nil, "")

	api.On("CopyObject", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket", BucketName: "vault"}).Once()

	err := store.Move(context.Background(), "private", "vault", "originals/D1.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_MoveRemoveFails(t *testing.T) {
	api := new(mockAPI)
	store := NewStore(api, nil, "")

	api.On("CopyObject", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Once()
	api.On("RemoveObject", mock.Anything, "private", "text/D1.txt", mock.Anything).
		Return(errors.New("access denied")).Once()

	err := store.Move(context.Background(), "private", "public", "text/D1.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
