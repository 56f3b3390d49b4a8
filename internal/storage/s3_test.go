package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"familytree/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	clock   time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.clock = f.clock.Add(time.Minute)
	f.objects[aws.ToString(in.Key)] = fakeObject{data: data, contentType: aws.ToString(in.ContentType), modified: f.clock}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ListObjectsV2 returns everything in one page
func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key, obj := range f.objects {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return out, nil
}

func TestS3_PutListDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := newS3(fake, "tree", "uploads/", "https://cdn.example.com/", testLogger())

	url, err := store.Put(ctx, "1-abc-a.png", []byte("aaa"), "image/png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "https://cdn.example.com/uploads/1-abc-a.png" {
		t.Errorf("Put() url = %q", url)
	}
	if got := fake.objects["uploads/1-abc-a.png"].contentType; got != "image/png" {
		t.Errorf("ContentType = %q, want image/png", got)
	}
	if _, err := store.Put(ctx, "2-def-b.png", []byte("b"), "image/png"); err != nil {
		t.Fatal(err)
	}
	fake.objects["uploads/thumbs/x.png"] = fakeObject{data: []byte("x")}

	objects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 2 || objects[0].Name != "2-def-b.png" || objects[1].Size != 3 {
		t.Errorf("List() = %+v, want two top-level objects newest first", objects)
	}

	if err := store.Delete(ctx, "2-def-b.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "2-def-b.png"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
