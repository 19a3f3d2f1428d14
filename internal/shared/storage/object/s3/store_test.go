package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	putKeys    []string
	putBody    string
	deleteKeys []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putKeys = append(f.putKeys, *params.Key)
	data, _ := io.ReadAll(params.Body)
	f.putBody = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.putBody))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteKeys = append(f.deleteKeys, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestSaveAndReleaseUsePrefixedKey(t *testing.T) {
	fake := &fakeS3{}
	store := newWithClient(fake, "bucket", "/uploads/", "")

	obj, err := store.Save(context.Background(), "guest:1", "cv.txt", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if obj.Size != int64(len("hello world")) || fake.putBody != "hello world" {
		t.Fatalf("unexpected upload size=%d body=%q", obj.Size, fake.putBody)
	}
	if !strings.HasPrefix(fake.putKeys[0], "uploads/") {
		t.Fatalf("expected prefixed key, got %q", fake.putKeys[0])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Release(ctx, obj.Key); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(fake.deleteKeys) != 1 || fake.deleteKeys[0] != fake.putKeys[0] {
		t.Fatalf("expected delete of %q, got %v", fake.putKeys[0], fake.deleteKeys)
	}
}
