package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	// TODO: is there some better way to allow for stubbing filesystem interactions for tests?
	concreteWalkFunc walkFunc = walkDirectory

	// sized from config at startup, see InitRuntime
	semaphore     chan int
	retryAttempts int
)

// LocalFile pairs a walked file with the bucket key it maps to. RelPath is
// slash separated regardless of platform, it has to line up with remote keys.
type LocalFile struct {
	RelPath string
	AbsPath string
}

type ResultMap struct {
	Upload map[string]error
	Delete map[string]error
	lock   *sync.Mutex
}

func NewResultMap() *ResultMap {
	return &ResultMap{
		Upload: make(map[string]error),
		Delete: make(map[string]error),
		lock:   new(sync.Mutex),
	}
}

func (r *ResultMap) AddUploadResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Upload[key] = result
}

func (r *ResultMap) AddDeleteResult(key string, result error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Delete[key] = result
}

// FirstError returns one recorded failure, upload failures ahead of delete
// failures. Which of several failures comes back is not specified.
func (r *ResultMap) FirstError() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, uploadErr := range r.Upload {
		if uploadErr != nil {
			return uploadErr
		}
	}
	for _, delErr := range r.Delete {
		if delErr != nil {
			return delErr
		}
	}

	return nil
}

func (r *ResultMap) ErrorCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	count := 0
	for _, uploadErr := range r.Upload {
		if uploadErr != nil {
			count++
		}
	}
	for _, delErr := range r.Delete {
		if delErr != nil {
			count++
		}
	}

	return count
}

// claimTracker answers "which remote keys have no local counterpart" once the
// upload phase is done. Every local file claims its key whether it skipped,
// uploaded, or failed to upload; whatever is still unclaimed afterwards gets
// deleted. Claims arrive from many goroutines, hence the mutex.
type claimTracker struct {
	mu      sync.Mutex
	objects map[string]RemoteObject
}

func newClaimTracker(objects []RemoteObject) *claimTracker {
	byKey := make(map[string]RemoteObject, len(objects))
	for _, object := range objects {
		byKey[object.Key] = object
	}

	return &claimTracker{objects: byKey}
}

func (c *claimTracker) Lookup(key string) (RemoteObject, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	object, ok := c.objects[key]
	return object, ok
}

func (c *claimTracker) Claim(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
}

// Remaining returns the unclaimed keys, sorted for stable logs.
func (c *claimTracker) Remaining() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.objects))
	for key := range c.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func doSync(client BucketClient, sc SyncConfig, notifier Notifier, lock *sync.Mutex) (*ResultMap, error) {
	resultMap := NewResultMap()
	if !lock.TryLock() {
		log.Warn("Another sync routine is already running. Skipping.")
		return resultMap, fmt.Errorf("Unable to acquire sync lock")
	}
	defer lock.Unlock()
	log.Info(fmt.Sprintf("Sync starting for %s.", sc.SourceDir))
	syncStartTime := time.Now()

	ignore := NewIgnoreSet(sc.Ignore, sc.EnforceIgnores)

	// the bucket listing and the local walk are independent, run both at once
	// and reconcile only once both are in
	var remoteObjects []RemoteObject
	var localPaths []string
	var gatherGroup errgroup.Group
	gatherGroup.Go(func() error {
		var listBucketErr error
		remoteObjects, listBucketErr = client.ListObjects(sc.Bucket)
		return listBucketErr
	})
	gatherGroup.Go(func() error {
		var listLocalFilesErr error
		localPaths, listLocalFilesErr = concreteWalkFunc(sc.SourceDir, ignore)
		return listLocalFilesErr
	})
	if gatherErr := gatherGroup.Wait(); gatherErr != nil {
		log.Warn(fmt.Sprintf("gather err: %s", gatherErr))
		return resultMap, gatherErr
	}

	remoteByKey := newClaimTracker(remoteObjects)
	localFiles, relErr := toLocalFiles(sc.SourceDir, localPaths)
	if relErr != nil {
		return resultMap, relErr
	}

	var wg sync.WaitGroup
	for _, localFile := range localFiles {
		wg.Add(1)
		go doSyncFile(client, sc, localFile, remoteByKey, &wg, resultMap)
	}
	wg.Wait()

	if !sc.ContinueOnError {
		if uploadErr := resultMap.FirstError(); uploadErr != nil {
			notifyResults(notifier, sc, resultMap)
			return resultMap, uploadErr
		}
	}

	// claims are final here: whatever is left has no local counterpart
	leftoverKeys := remoteByKey.Remaining()
	if len(leftoverKeys) > 0 {
		log.Info(fmt.Sprintf("Extra files on remote: %s", strings.Join(leftoverKeys, ", ")))
	}
	for _, key := range leftoverKeys {
		wg.Add(1)
		go doDeleteObject(client, sc, key, &wg, resultMap)
	}
	wg.Wait()

	if !sc.ContinueOnError {
		if delErr := resultMap.FirstError(); delErr != nil {
			notifyResults(notifier, sc, resultMap)
			return resultMap, delErr
		}
	}

	duration := time.Since(syncStartTime)
	log.Info(fmt.Sprintf("Sync complete for %s. Took %s", sc.SourceDir, duration.String()))

	notifyResults(notifier, sc, resultMap)

	if errCount := resultMap.ErrorCount(); errCount > 0 {
		return resultMap, fmt.Errorf("Sync finished with %d failed operations", errCount)
	}
	log.Info("Done.")

	return resultMap, nil
}

// notifyResults forwards the run's failures to the notifier, if one is
// configured. Notification problems are logged, they never fail the sync.
func notifyResults(notifier Notifier, sc SyncConfig, resultMap *ResultMap) {
	if notifier == nil {
		return
	}
	if notifyErr := notifier.NotifySyncResults(sc, resultMap); notifyErr != nil {
		log.Warn(fmt.Sprintf("Error sending notification: %s", notifyErr))
	}
}

// toLocalFiles pairs each walked absolute path with the slash separated key
// it maps to in the bucket.
func toLocalFiles(sourceDir string, paths []string) ([]LocalFile, error) {
	localFiles := make([]LocalFile, 0, len(paths))
	for _, absPath := range paths {
		relPath, relErr := filepath.Rel(sourceDir, absPath)
		if relErr != nil {
			return nil, &FilesystemError{Path: absPath, Err: relErr}
		}
		localFiles = append(localFiles, LocalFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: absPath,
		})
	}

	return localFiles, nil
}

func doSyncFile(
	client BucketClient,
	sc SyncConfig,
	file LocalFile,
	remoteByKey *claimTracker,
	wg *sync.WaitGroup,
	resultMap *ResultMap,
) error {
	defer wg.Done()
	semaphore <- 1
	defer func() { <-semaphore }()

	// a key with a local counterpart must never reach the delete phase, so
	// claim it up front, before any step here can fail
	remoteObj, hasRemote := remoteByKey.Lookup(file.RelPath)
	remoteByKey.Claim(file.RelPath)

	data, readErr := os.ReadFile(file.AbsPath)
	if readErr != nil {
		fsErr := &FilesystemError{Path: file.AbsPath, Err: readErr}
		resultMap.AddUploadResult(file.RelPath, fsErr)
		return fsErr
	}
	localHash := md5Hex(data)

	if hasRemote {
		remoteHash, decodeErr := decodeETag(remoteObj.ETag)
		if decodeErr == nil && remoteHash == localHash {
			log.Info(fmt.Sprintf("skip %s", file.RelPath))
			return nil
		}
		if decodeErr != nil {
			// no way to compare against an opaque etag, upload again so the
			// fresh object carries a comparable one
			log.Warn(fmt.Sprintf("%s: %s. Uploading again.", file.RelPath, decodeErr))
		}
	}

	contentType := contentTypeFor(file.RelPath)
	log.Info(fmt.Sprintf("uploading %s (%s, %s)", file.RelPath, humanize.Bytes(uint64(len(data))), contentType))
	if sc.DryRun {
		resultMap.AddUploadResult(file.RelPath, nil)
		return nil
	}

	uploadErr := withRetry(retryAttempts, fmt.Sprintf("upload of %s", file.RelPath), func() error {
		return client.PutObject(sc.Bucket, file.RelPath, data, contentType)
	})
	resultMap.AddUploadResult(file.RelPath, uploadErr)
	if uploadErr != nil {
		log.Warn(fmt.Sprintf("upload err: %s", uploadErr))
		return uploadErr
	}
	log.Info(fmt.Sprintf("uploaded %s", file.RelPath))

	return nil
}

func doDeleteObject(
	client BucketClient,
	sc SyncConfig,
	key string,
	wg *sync.WaitGroup,
	resultMap *ResultMap,
) error {
	defer wg.Done()
	semaphore <- 1
	defer func() { <-semaphore }()

	log.Info(fmt.Sprintf("removing %s", key))
	if sc.DryRun {
		resultMap.AddDeleteResult(key, nil)
		return nil
	}

	delErr := withRetry(retryAttempts, fmt.Sprintf("delete of %s", key), func() error {
		return client.DeleteObject(sc.Bucket, key)
	})
	resultMap.AddDeleteResult(key, delErr)
	if delErr != nil {
		log.Warn(fmt.Sprintf("Error deleting: %s", delErr))
		return delErr
	}
	log.Info(fmt.Sprintf("Deleted %s from bucket %s", key, sc.Bucket))

	return nil
}
