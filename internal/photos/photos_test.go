package photos

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/config"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	key     string
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.key = *params.Key
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + f.key + "?sig=1"}, nil
}

func TestNewWithoutBucketIsDisabled(t *testing.T) {
	a, err := New(context.Background(), config.S3Config{})
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix    string
		mediaType string
		want      string
	}{
		{"", "image/jpeg", "abc.jpg"},
		{"photos", "image/png", "photos/abc.png"},
		{"/photos/", "image/webp", "photos/abc.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a := NewWithClient(&fakeS3{}, nil, "bucket", tt.prefix)
			assert.Equal(t, tt.want, a.Key("abc", tt.mediaType))
		})
	}
}

func TestUpload(t *testing.T) {
	t.Run("puts object with content type", func(t *testing.T) {
		client := &fakeS3{}
		a := NewWithClient(client, nil, "recipes", "src")

		key, err := a.Upload(context.Background(), "r1", []byte("jpegdata"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "src/r1.jpg", key)
		require.NotNil(t, client.input)
		assert.Equal(t, "recipes", *client.input.Bucket)
		assert.Equal(t, "src/r1.jpg", *client.input.Key)
		assert.Equal(t, "image/jpeg", *client.input.ContentType)
		assert.Equal(t, []byte("jpegdata"), client.body)
	})

	t.Run("wraps client errors", func(t *testing.T) {
		a := NewWithClient(&fakeS3{err: errors.New("access denied")}, nil, "recipes", "")
		_, err := a.Upload(context.Background(), "r1", []byte("x"), "image/png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestPresignedURL(t *testing.T) {
	p := &fakePresigner{}
	a := NewWithClient(&fakeS3{}, p, "recipes", "")

	url, err := a.PresignedURL(context.Background(), "r1.jpg", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/r1.jpg?sig=1", url)
	assert.Equal(t, 15*time.Minute, p.expires)

	_, err = NewWithClient(&fakeS3{}, nil, "recipes", "").PresignedURL(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}
