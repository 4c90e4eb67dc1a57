package pipeline

import (
	"context"
	"net/url"
	"time"
)

// fakeArtifactStore is an in-process ArtifactStore fake, the pipeline
// package's counterpart to internal/worker's memoryArtifactStore —
// standing in for the S3-compatible endpoint in tests.
type fakeArtifactStore struct {
	sizes map[string]int64
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{sizes: map[string]int64{}}
}

func (f *fakeArtifactStore) put(key string, size int64) {
	f.sizes[key] = size
}

func (f *fakeArtifactStore) PresignGet(_ context.Context, key string, ttl time.Duration) (*url.URL, error) {
	return url.Parse("https://artifacts.example.test/" + key + "?ttl=" + ttl.String())
}

func (f *fakeArtifactStore) Stat(_ context.Context, key string) (int64, error) {
	if size, ok := f.sizes[key]; ok {
		return size, nil
	}
	return 0, errNoSuchKey
}

type staticError string

func (e staticError) Error() string { return string(e) }

const errNoSuchKey = staticError("no such key")
