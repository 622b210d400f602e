package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Client struct {
	Client   *s3.Client
	Uploader *manager.Uploader
}

// Multipart uploads leave a composite "<hash>-N" etag that no later run can
// compare against a content hash, so every body must go up as a single part.
// 5 GiB is the S3 single-put ceiling.
const maxSinglePutSize = 5 * 1024 * 1024 * 1024

func singlePutSizing(u *manager.Uploader) {
	u.PartSize = maxSinglePutSize
}

func NewS3BucketClient(appConfig AppConfig) (*S3Client, error) {
	cfg, cfgErr := config.LoadDefaultConfig(context.TODO(),
		config.WithSharedConfigProfile(appConfig.Provider.Profile),
		config.WithRegion(appConfig.Provider.Region))
	if cfgErr != nil {
		return nil, fmt.Errorf("Error creating s3 client: %+v", cfgErr)
	}
	awsS3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if appConfig.Provider.Endpoint != "" {
			o.BaseEndpoint = aws.String(appConfig.Provider.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{Client: awsS3Client, Uploader: manager.NewUploader(awsS3Client, singlePutSizing)}, nil
}

func (s *S3Client) ListObjects(bucketName string) ([]RemoteObject, error) {
	objects := make([]RemoteObject, 0)
	listParams := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	}
	for {
		currentPage, pageErr := s.Client.ListObjectsV2(context.TODO(), listParams)
		if pageErr != nil {
			return nil, &RemoteListError{Bucket: bucketName, Err: pageErr}
		}
		if currentPage == nil {
			return nil, &RemoteListError{Bucket: bucketName, Err: errors.New("empty list response")}
		}
		for _, object := range currentPage.Contents {
			objects = append(objects, RemoteObject{
				Key:  aws.ToString(object.Key),
				ETag: aws.ToString(object.ETag),
			})
		}
		if !aws.ToBool(currentPage.IsTruncated) || len(currentPage.Contents) == 0 {
			break
		}
		listParams.StartAfter = currentPage.Contents[len(currentPage.Contents)-1].Key
	}

	return objects, nil
}

func (s *S3Client) PutObject(bucketName, key string, data []byte, contentType string) error {
	_, putErr := s.Uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(strings.TrimPrefix(key, "/")),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if putErr != nil {
		return &RemoteWriteError{Bucket: bucketName, Key: key, Err: putErr}
	}

	return nil
}

// DeleteObject removes key from the bucket. Deleting a key that is already
// gone counts as success.
func (s *S3Client) DeleteObject(bucket string, key string) error {
	delReq := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	}
	_, delErr := s.Client.DeleteObject(context.TODO(), delReq)
	if delErr != nil {
		if isNotFound(delErr) {
			return nil
		}
		return &RemoteDeleteError{Bucket: bucket, Key: key, Err: delErr}
	}

	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
