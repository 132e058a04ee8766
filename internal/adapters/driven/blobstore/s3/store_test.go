package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if v := args.Get(0); v != nil {
		return v.(*s3.HeadObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) CopyObject(ctx context.Context, params *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	args := m.Called(ctx, params)
	if v := args.Get(0); v != nil {
		return v.(*s3.CopyObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if v := args.Get(0); v != nil {
		return v.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStore_Exists(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, map[string]string{"public": "archive-public"}, "prefix")

	t.Run("Found", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Bucket == "archive-public" && *input.Key == "prefix/originals/D1.pdf"
		})).Return(&s3.HeadObjectOutput{}, nil).Once()

		ok, err := store.Exists(context.Background(), "public", "originals/D1.pdf")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Bucket == "private"
		})).Return(nil, &types.NotFound{}).Once()

		ok, err := store.Exists(context.Background(), "private", "originals/D1.pdf")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unavailable", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "prefix/text/D1.txt"
		})).Return(nil, errors.New("dial tcp: timeout")).Once()

		_, err := store.Exists(context.Background(), "public", "text/D1.txt")
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})

	mockClient.AssertExpectations(t)
}

func TestStore_Move(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, nil, "")

	mockClient.On("CopyObject", mock.Anything, mock.MatchedBy(func(input *s3.CopyObjectInput) bool {
		return *input.Bucket == "public" &&
			*input.Key == "originals/D 1.pdf" &&
			*input.CopySource == "private/originals/D%201.pdf"
	})).Return(&s3.CopyObjectOutput{}, nil).Once()
	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "private" && *input.Key == "originals/D 1.pdf"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Move(context.Background(), "private", "public", "originals/D 1.pdf"))
	mockClient.AssertExpectations(t)
}

func TestStore_MoveSourceMissing(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, nil, "")

	mockClient.On("CopyObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}).Once()

	err := store.Move(context.Background(), "private", "public", "originals/D1.pdf")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	mockClient.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestStore_MoveDeleteFails(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, nil, "")

	mockClient.On("CopyObject", mock.Anything, mock.Anything).Return(&s3.CopyObjectOutput{}, nil).Once()
	mockClient.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

	err := store.Move(context.Background(), "private", "public", "text/D1.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestCopySource(t *testing.T) {
	assert.Equal(t, "bucket/a/b.pdf", copySource("bucket", "a/b.pdf"))
	assert.Equal(t, "bucket/a/%D7%90.pdf", copySource("bucket", "a/א.pdf"))
}
