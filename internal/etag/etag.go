// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package etag computes the content digest the import protocol uses to
// deduplicate and verify uploads. The digest is the lowercase hex MD5 of the
// file bytes, which is what the blob store echoes back in its ETag header.
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sum returns the etag of b.
func Sum(b []byte) string {
	h := md5.Sum(b)
	return hex.EncodeToString(h[:])
}

// Reader streams r and returns its etag.
func Reader(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the etag of the file at path without loading it into memory.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sum, err := Reader(f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return sum, nil
}

// Normalize strips the surrounding quotes and weak-validator prefix some
// stores put on an ETag header value.
func Normalize(header string) string {
	v := strings.TrimSpace(header)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}

// Equal reports whether a header value matches a locally computed etag.
func Equal(header, local string) bool {
	return strings.EqualFold(Normalize(header), local)
}
