package main

// RemoteObject is one entry from a bucket listing. ETag carries the
// provider's raw value: a quoted hex content hash for objects uploaded in a
// single part, an opaque token for anything else.
type RemoteObject struct {
	Key  string
	ETag string
}

type BucketClient interface {
	ListObjects(string) ([]RemoteObject, error)
	PutObject(bucket string, key string, data []byte, contentType string) error
	DeleteObject(bucket string, key string) error
}
