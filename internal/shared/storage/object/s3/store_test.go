package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "jobs/output.json", want: "jobs/output.json"},
		{name: "simple prefix", prefix: "summaries", key: "output.json", want: "summaries/output.json"},
		{name: "prefix trailing slash", prefix: "summaries/", key: "output.json", want: "summaries/output.json"},
		{name: "prefix and key slashes", prefix: "/summaries/", key: "/output.json", want: "summaries/output.json"},
		{name: "nested prefix", prefix: "env/prod", key: "output.json", want: "env/prod/output.json"},
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

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestSaveWithKey(t *testing.T) {
	fake := &fakePutter{}
	store := newWithClient(fake, "bucket", "/summaries/", "")

	n, err := store.SaveWithKey(context.Background(), "output.json", "application/json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != 7 || fake.body != `{"a":1}` {
		t.Fatalf("unexpected upload n=%d body=%q", n, fake.body)
	}
	if aws.ToString(fake.input.Key) != "summaries/output.json" || aws.ToString(fake.input.Bucket) != "bucket" {
		t.Fatalf("unexpected target %s/%s", aws.ToString(fake.input.Bucket), aws.ToString(fake.input.Key))
	}
	if fake.input.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %s", fake.input.ServerSideEncryption)
	}
	if got := store.Location("output.json"); got != "s3://bucket/summaries/output.json" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestSaveWithKeyKMS(t *testing.T) {
	fake := &fakePutter{}
	store := newWithClient(fake, "bucket", "", "kms-key")

	if _, err := store.SaveWithKey(context.Background(), "output.json", "application/json", strings.NewReader("{}")); err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if fake.input.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(fake.input.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected KMS encryption, got %+v", fake.input)
	}
}

func TestSaveWithKeyError(t *testing.T) {
	fake := &fakePutter{err: errors.New("access denied")}
	store := newWithClient(fake, "bucket", "", "")

	_, err := store.SaveWithKey(context.Background(), "output.json", "application/json", strings.NewReader("{}"))
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
