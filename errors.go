package main

import "fmt"

// RemoteListError wraps a failure to enumerate the contents of a bucket.
type RemoteListError struct {
	Bucket string
	Err    error
}

func (e *RemoteListError) Error() string {
	return fmt.Sprintf("listing bucket %s: %v", e.Bucket, e.Err)
}

func (e *RemoteListError) Unwrap() error {
	return e.Err
}

type RemoteWriteError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("writing %s to bucket %s: %v", e.Key, e.Bucket, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

type RemoteDeleteError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *RemoteDeleteError) Error() string {
	return fmt.Sprintf("deleting %s from bucket %s: %v", e.Key, e.Bucket, e.Err)
}

func (e *RemoteDeleteError) Unwrap() error {
	return e.Err
}

// FilesystemError wraps a failure to read the local tree.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ETagDecodeError means a remote etag did not decode to a plain hex digest,
// e.g. the part-count token a multipart upload leaves behind. Callers treat
// the object as changed rather than failing the run.
type ETagDecodeError struct {
	ETag string
}

func (e *ETagDecodeError) Error() string {
	return fmt.Sprintf("etag %s is not a content hash", e.ETag)
}
