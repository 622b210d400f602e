package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

type GCSClient struct {
	Client *storage.Client
}

func (s *GCSClient) ListObjects(bucketName string) ([]RemoteObject, error) {
	objects := make([]RemoteObject, 0)
	objIter := s.Client.Bucket(bucketName).Objects(context.TODO(), nil)
	for {
		attrs, err := objIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &RemoteListError{Bucket: bucketName, Err: err}
		}
		// GCS reports the content MD5 as raw bytes rather than a quoted etag,
		// re-encode it so the listing looks the same as the S3 one. Composite
		// objects have no MD5 and end up with an undecodable etag, which the
		// caller already handles by uploading again.
		objects = append(objects, RemoteObject{
			Key:  attrs.Name,
			ETag: strconv.Quote(hex.EncodeToString(attrs.MD5)),
		})
	}

	return objects, nil
}

func (s *GCSClient) PutObject(bucketName, key string, data []byte, contentType string) error {
	object := s.Client.Bucket(bucketName).Object(strings.TrimPrefix(key, "/"))
	objWriter := object.NewWriter(context.TODO())
	objWriter.ContentType = contentType
	objWriter.PredefinedACL = "publicRead"
	if _, uploadErr := io.Copy(objWriter, bytes.NewReader(data)); uploadErr != nil {
		return &RemoteWriteError{Bucket: bucketName, Key: key, Err: uploadErr}
	}
	if closeErr := objWriter.Close(); closeErr != nil {
		return &RemoteWriteError{Bucket: bucketName, Key: key, Err: closeErr}
	}

	return nil
}

func (s *GCSClient) DeleteObject(bucket string, key string) error {
	object := s.Client.Bucket(bucket).Object(strings.TrimPrefix(key, "/"))
	if delErr := object.Delete(context.TODO()); delErr != nil {
		if errors.Is(delErr, storage.ErrObjectNotExist) {
			return nil
		}
		return &RemoteDeleteError{Bucket: bucket, Key: key, Err: delErr}
	}

	return nil
}
