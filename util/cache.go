// util/cache.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeObject writes obj to w as zstd-compressed msgpack.
func EncodeObject(w io.Writer, obj any) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode object: %w", err)
	}
	return zw.Close()
}

// DecodeObject reads zstd-compressed msgpack from r into obj.
func DecodeObject(r io.Reader, obj any) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(obj); err != nil {
		return fmt.Errorf("failed to decode object: %w", err)
	}
	return nil
}

// CacheStoreObject saves obj at the given path, creating any intermediate
// directories. The file is written to a temporary name first and renamed
// so that concurrent readers never see a partial object.
func CacheStoreObject(path string, obj any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := EncodeObject(f, obj); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// CacheRetrieveObject loads an object previously saved with
// CacheStoreObject, returning the file's modification time.
func CacheRetrieveObject(path string, obj any) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	return fi.ModTime(), DecodeObject(f, obj)
}
