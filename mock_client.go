package main

import (
	"sort"
	"strconv"
	"sync"
)

// MockBucketClient keeps an in-memory bucket whose etags follow the same
// quoted-digest convention as a real listing, so consecutive syncs against it
// behave like consecutive syncs against a real bucket.
type MockBucketClient struct {
	PutRequests    []MockRequest
	DeleteRequests []MockRequest
	ListErr        error
	PutErrs        map[string]error
	DeleteErrs     map[string]error
	mockList       map[string]string
	lock           sync.Mutex
}

type MockRequest struct {
	Bucket      string
	Key         string
	ContentType string
}

func NewMockClient(mocked map[string]string) *MockBucketClient {
	if mocked == nil {
		mocked = make(map[string]string)
	}
	return &MockBucketClient{
		PutRequests:    make([]MockRequest, 0),
		DeleteRequests: make([]MockRequest, 0),
		mockList:       mocked,
	}
}

func (s *MockBucketClient) ListObjects(string) ([]RemoteObject, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	objects := make([]RemoteObject, 0, len(s.mockList))
	for key, etag := range s.mockList {
		objects = append(objects, RemoteObject{Key: key, ETag: etag})
	}
	return objects, nil
}

func (s *MockBucketClient) PutObject(bucket string, key string, data []byte, contentType string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if putErr, ok := s.PutErrs[key]; ok {
		return putErr
	}
	s.PutRequests = append(s.PutRequests, MockRequest{Bucket: bucket, Key: key, ContentType: contentType})
	s.mockList[key] = strconv.Quote(md5Hex(data))
	return nil
}

func (s *MockBucketClient) DeleteObject(bucket string, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if delErr, ok := s.DeleteErrs[key]; ok {
		return delErr
	}
	s.DeleteRequests = append(s.DeleteRequests, MockRequest{Bucket: bucket, Key: key})
	delete(s.mockList, key)
	return nil
}

func (s *MockBucketClient) RemoteKeys() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	keys := make([]string, 0, len(s.mockList))
	for key := range s.mockList {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *MockBucketClient) RemoteETag(key string) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.mockList[key]
}
