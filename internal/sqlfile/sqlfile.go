// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlfile validates and reads SQL script files before they are executed
// locally or handed to the import pipeline.
package sqlfile

import (
	"bytes"
	"io"
	"os"

	apperr "sqlferry/cli/internal/errors"
)

// sqliteMagic is the header every SQLite database file starts with.
var sqliteMagic = []byte("SQLite format 3")

// CheckNotBinary fails with a user error when path cannot be read or is a
// SQLite database file rather than a text script.
func CheckNotBinary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return unreadable(path, err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return unreadable(path, err)
	}
	if n == len(sqliteMagic) && bytes.Equal(head, sqliteMagic) {
		return apperr.User("Provided file is a binary SQLite database file instead of an SQL text file. " +
			"The execute command can only process SQL text files. " +
			"Please export an SQL file from your SQLite database and try again.")
	}
	return nil
}

// Read checks path and returns its contents as a string.
func Read(path string) (string, error) {
	if err := CheckNotBinary(path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", unreadable(path, err)
	}
	return string(b), nil
}

// Size returns the size of the file at path in bytes.
func Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, unreadable(path, err)
	}
	return fi.Size(), nil
}

func unreadable(path string, err error) error {
	return apperr.Wrap(apperr.UserError,
		"Unable to read SQL text file \""+path+"\". Please check the file path and try again.", err)
}
