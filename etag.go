package main

import (
	"crypto/md5"
	"fmt"
	"strconv"
)

// md5Hex returns the lowercase hex digest of data, the same value S3 stores
// as the etag for objects uploaded in a single part.
func md5Hex(data []byte) string {
	digest := md5.Sum(data)
	return fmt.Sprintf("%x", digest)
}

// decodeETag strips the string quoting from a raw etag (`"abc..."` on the
// wire) and validates that what is left is a plain hex digest. Multipart
// etags carry a dash and a part count, so they fail the digest check.
func decodeETag(raw string) (string, error) {
	decoded, unquoteErr := strconv.Unquote(raw)
	if unquoteErr != nil {
		return "", &ETagDecodeError{ETag: raw}
	}
	if !isHexDigest(decoded) {
		return "", &ETagDecodeError{ETag: raw}
	}

	return decoded, nil
}

func isHexDigest(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isHexLetter := c >= 'a' && c <= 'f'
		if !isDigit && !isHexLetter {
			return false
		}
	}

	return true
}
