package seed

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string]string
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)
	f.keys = append(f.keys, aws.ToString(params.Bucket)+"/"+key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) (*Catalogue, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) (*Catalogue, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"catalogue/seed.json": sampleCatalogue}}
	loader := newS3Loader(client, "inventory-seed", zerolog.Nop())

	c, err := loader.Load(context.Background(), "catalogue/seed.json")
	require.NoError(t, err)
	assert.Len(t, c.Products, 2)
	assert.Equal(t, []string{"inventory-seed/catalogue/seed.json"}, client.keys)

	_, err = loader.Load(context.Background(), "catalogue/missing.json")
	assert.Error(t, err)
}

func TestFallbackLoader_S3Success(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			assert.Equal(t, "catalogue/seed.json", path, "S3 key should have prefix")
			return &Catalogue{Categories: nil}, nil
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	c, err := NewFallbackLoader(s3, local, "catalogue/", true, zerolog.Nop()).Load(context.Background(), "seed.json")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	localCalled := false
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			localCalled = true
			assert.Equal(t, "seed.json", path, "local path should not have prefix")
			return &Catalogue{}, nil
		},
	}

	_, err := NewFallbackLoader(s3, local, "catalogue/", true, zerolog.Nop()).Load(context.Background(), "seed.json")
	require.NoError(t, err)
	assert.True(t, localCalled)
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			t.Error("S3 loader should not be called when disabled")
			return nil, nil
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) (*Catalogue, error) {
			return &Catalogue{}, nil
		},
	}

	_, err := NewFallbackLoader(s3, local, "catalogue/", false, zerolog.Nop()).Load(context.Background(), "seed.json")
	assert.NoError(t, err)

	_, err = NewFallbackLoader(nil, local, "catalogue/", true, zerolog.Nop()).Load(context.Background(), "seed.json")
	assert.NoError(t, err)
}

func TestFallbackLoader_BothFail(t *testing.T) {
	failing := &mockLoader{}

	_, err := NewFallbackLoader(failing, failing, "catalogue/", true, zerolog.Nop()).Load(context.Background(), "seed.json")
	assert.Error(t, err)
}
