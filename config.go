package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

type AppConfig struct {
	Provider    ProviderConfig
	Concurrency int `default:"8"`
	Retries     int
	Sync        SyncConfig
	Notify      NotifyConfig
}

type ProviderConfig struct {
	Name     string `default:"aws"`
	Region   string
	Profile  string
	Endpoint string
}

type SyncConfig struct {
	SourceDir       string `required:"true"`
	Bucket          string `required:"true"`
	Interval        int
	Ignore          []string
	EnforceIgnores  bool
	ContinueOnError bool
	DryRun          bool
}

type NotifyConfig struct {
	Topic   string
	Region  string
	Profile string
}

// InitRuntime sizes the global transfer semaphore and the retry budget from
// config. Call once at startup, before any sync runs.
func (c AppConfig) InitRuntime() {
	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	semaphore = make(chan int, concurrency)
	retryAttempts = c.Retries
}

func (c AppConfig) ClientFromConfig() (BucketClient, error) {
	var bucketClient BucketClient

	switch c.Provider.Name {
	case "aws":
		s3Client, clientErr := NewS3BucketClient(c)
		if clientErr != nil {
			return bucketClient, clientErr
		}
		bucketClient = s3Client
	case "gcs":
		gcsClient, clientErr := storage.NewClient(context.TODO())
		if clientErr != nil {
			return bucketClient, fmt.Errorf("Error creating gcs client: %+v", clientErr)
		}
		bucketClient = &GCSClient{Client: gcsClient}
	default:
		return bucketClient, fmt.Errorf("Unknown cloud provider: %s", c.Provider.Name)
	}

	return bucketClient, nil
}

func (c AppConfig) ConfigStringArray() []string {
	configStrArr := make([]string, 0)
	configStrArr = append(configStrArr, fmt.Sprintf("  - Provider: %s", c.Provider.Name))
	configStrArr = append(configStrArr, fmt.Sprintf("  - Region: %s", c.Provider.Region))
	if c.Provider.Profile != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - Profile: %s", c.Provider.Profile))
	}
	configStrArr = append(configStrArr, fmt.Sprintf("  - Concurrent Transfers: %d", c.Concurrency))
	if c.Retries > 0 {
		configStrArr = append(configStrArr, fmt.Sprintf("  - Retries: %d", c.Retries))
	}
	if c.Notify.Topic != "" {
		configStrArr = append(configStrArr, fmt.Sprintf("  - SNSTopic: %s", c.Notify.Topic))
	}
	configStrArr = append(configStrArr, fmt.Sprintf("Syncing %s -> %s", c.Sync.SourceDir, c.Sync.Bucket))

	return configStrArr
}
