package packager_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/packager"
)

type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.objects[aws.ToString(in.Key)]; taken && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}
	f.objects[aws.ToString(in.Key)] = data
	f.contentTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contents []types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, obj := range in.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestS3Storage_PutOpenDelete(t *testing.T) {
	client := newFakeS3()
	storage, err := packager.NewS3Storage(client, "legaldocs", "documents/")
	if err != nil {
		t.Fatalf("new s3 storage: %v", err)
	}
	ctx := context.Background()

	for _, p := range []string{"company-1/a.pdf", "company-1/b.txt", "company-2/a.pdf"} {
		if err := storage.Put(ctx, p, []byte(p), "application/pdf"); err != nil {
			t.Fatalf("put %s: %v", p, err)
		}
	}
	if client.contentTypes["documents/company-1/a.pdf"] != "application/pdf" {
		t.Fatalf("content type not forwarded: %v", client.contentTypes)
	}

	rc, err := storage.Open(ctx, "company-1/b.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "company-1/b.txt" {
		t.Fatalf("open = %q", got)
	}

	if err := storage.Delete(ctx, "company-1/"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if diff := cmp.Diff([]string{"documents/company-2/a.pdf"}, client.keys()); diff != "" {
		t.Fatalf("remaining keys mismatch (-want +got):\n%s", diff)
	}

	if _, err := storage.Open(ctx, "company-1/a.pdf"); !errors.Is(err, packager.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := storage.Delete(ctx, "/"); err == nil {
		t.Fatalf("empty prefix delete should fail")
	}
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	if _, err := packager.NewS3Storage(newFakeS3(), "", ""); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	if _, err := packager.NewS3Storage(nil, "bucket", ""); err == nil {
		t.Fatalf("expected error for missing client")
	}
}

func TestS3Storage_PutNeverOverwrites(t *testing.T) {
	client := newFakeS3()
	storage, err := packager.NewS3Storage(client, "legaldocs", "")
	if err != nil {
		t.Fatalf("new s3 storage: %v", err)
	}
	ctx := context.Background()
	if err := storage.Put(ctx, "company-1/a.pdf", []byte("first"), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := storage.Put(ctx, "company-1/a.pdf", []byte("second"), "application/pdf"); !errors.Is(err, packager.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if got := string(client.objects["company-1/a.pdf"]); got != "first" {
		t.Fatalf("object overwritten: %q", got)
	}
}
