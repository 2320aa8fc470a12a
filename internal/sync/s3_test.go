package sync

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.keys = append(f.keys, aws.ToString(in.Key))
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Destination_Write(t *testing.T) {
	fake := &fakeS3{}
	dest := &S3Destination{
		client: fake,
		opts:   S3Options{Bucket: "exports", Key: "trackline/export.jsonl", Daily: true},
		now:    func() time.Time { return time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC) },
	}

	if err := dest.Write(context.Background(), []byte("{}\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []string{"trackline/export.jsonl", "trackline/export-2024-05-01.jsonl"}
	if !slices.Equal(fake.keys, want) {
		t.Fatalf("keys = %v, want %v", fake.keys, want)
	}
	if string(fake.bodies[1]) != "{}\n" {
		t.Fatalf("body = %q", fake.bodies[1])
	}
	if dest.Name() != "s3://exports/trackline/export.jsonl" {
		t.Fatalf("Name = %q", dest.Name())
	}
}

func TestS3Destination_WriteError(t *testing.T) {
	boom := errors.New("access denied")
	dest := &S3Destination{client: &fakeS3{err: boom}, opts: S3Options{Bucket: "b", Key: "k"}, now: time.Now}
	if err := dest.Write(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNewS3Destination_RequiresBucketAndKey(t *testing.T) {
	if _, err := NewS3Destination(context.Background(), S3Options{Key: "k"}); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestDailyKey(t *testing.T) {
	day := time.Date(2024, 2, 29, 1, 0, 0, 0, time.FixedZone("X", 3*3600))
	for _, tc := range []struct{ key, want string }{
		{"export.jsonl", "export-2024-02-28.jsonl"},
		{"a/b/export", "a/b/export-2024-02-28"},
	} {
		if got := dailyKey(tc.key, day); got != tc.want {
			t.Errorf("dailyKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}
