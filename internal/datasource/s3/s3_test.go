package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 serves a fixed key set from memory. Only the two calls the Store
// makes are implemented; everything else panics via the embedded interface.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
}

func (f *fakeS3) ListObjectsV2PagesWithContext(_ aws.Context, in *awss3.ListObjectsV2Input,
	fn func(*awss3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	var contents []*awss3.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.StringValue(in.Prefix)) {
			contents = append(contents, &awss3.Object{Key: aws.String(key)})
		}
	}
	fn(&awss3.ListObjectsV2Output{Contents: contents}, true)
	return nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *awss3.GetObjectInput, _ ...request.Option) (*awss3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserrNotFound{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type awserrNotFound struct{}

func (awserrNotFound) Error() string { return "NoSuchKey" }

func TestStoreListFiltersByPrefixAndExtension(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{
		"song-data/A/A/TRA.json": `{"song_id":"S1"}`,
		"song-data/A/B/TRB.json": `{"song_id":"S2"}`,
		"song-data/_manifest":    "nope",
		"log-data/2018/11/e.json": `{"page":"NextSong"}`,
	}}
	st, err := NewStore("bucket", "song-data/", WithClient(fake))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	objs, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
}

func TestStoreListEmptyPrefix(t *testing.T) {
	st, err := NewStore("bucket", "missing/", WithClient(&fakeS3{objects: map[string]string{}}))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	objs, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 0 {
		t.Fatalf("got %d objects, want 0", len(objs))
	}
}

func TestObjectOpenReadsBody(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"log-data/e.json": `{"page":"Home"}`}}
	st, _ := NewStore("bucket", "log-data/", WithClient(fake))
	objs, err := st.List(context.Background())
	if err != nil || len(objs) != 1 {
		t.Fatalf("List: objs=%d err=%v", len(objs), err)
	}
	rc, err := objs[0].Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != `{"page":"Home"}` {
		t.Errorf("body = %q", b)
	}
}

func TestNewStoreRequiresBucket(t *testing.T) {
	if _, err := NewStore("", "p/"); err == nil {
		t.Fatal("want error for empty bucket")
	}
}
