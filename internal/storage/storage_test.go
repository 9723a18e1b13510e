package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

type fakePutter struct {
	input   *s3.PutObjectInput
	body    []byte
	deleted []string
	err     error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakePutter) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct{ ttl time.Duration }

func (f *fakePresigner) GeneratePresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.ttl = ttl
	return "https://signed.example/" + key, nil
}

func TestDetectImage(t *testing.T) {
	img, err := DetectImage(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Ext)

	replayed, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, replayed)

	_, err = DetectImage(strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = DetectImage(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestLocalStoreSave(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media")

	ref, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "recipes/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.LessOrEqual(t, len(ref), 100)

	written, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)

	url, err := store.URL(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "/media/"+ref, url)

	empty, err := store.URL(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "local", store.Backend())
}

func TestLocalStoreDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")

	ref, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), ref))

	_, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, store.Delete(context.Background(), ref))
	assert.NoError(t, store.Delete(context.Background(), ""))
}

func TestLocalStoreRejectsNonImage(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")

	_, err := store.Save(context.Background(), strings.NewReader("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, statErr := os.Stat(filepath.Join(root, UploadDir))
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3StoreSave(t *testing.T) {
	putter := &fakePutter{}
	presigner := &fakePresigner{}
	store := NewS3Store(putter, presigner, "recipe-bucket")

	ref, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.NotNil(t, putter.input)
	assert.Equal(t, "recipe-bucket", *putter.input.Bucket)
	assert.Equal(t, ref, *putter.input.Key)
	assert.Equal(t, "image/png", *putter.input.ContentType)
	assert.Equal(t, pngHeader, putter.body)

	url, err := store.URL(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+ref, url)
	assert.Equal(t, 15*time.Minute, presigner.ttl)
	assert.Equal(t, "s3", store.Backend())

	require.NoError(t, store.Delete(context.Background(), ref))
	assert.Equal(t, []string{ref}, putter.deleted)
}

func TestS3StoreErrors(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	store := NewS3Store(putter, nil, "recipe-bucket")

	_, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload to S3")

	_, err = store.Save(context.Background(), strings.NewReader("plain"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	url, err := store.URL(context.Background(), "recipes/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://recipe-bucket.s3.amazonaws.com/recipes/a.png", url)

	err = store.Delete(context.Background(), "recipes/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete recipes/a.png")
}
