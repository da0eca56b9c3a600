// Copyright 2025 The polytool Authors.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"io"
	"time"

	"github.com/pkg/errors"
)

// entry is the on-disk envelope around a cached value: gob is
// self-describing, so decoding into the wrong V surfaces as a decode
// error rather than silently misreading bytes.
type entry[V any] struct {
	Value     V
	WrittenAt time.Time
}

func encode[V any](v V, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry[V]{Value: v, WrittenAt: time.Now()}); err != nil {
		return nil, err
	}
	if !compress {
		return buf.Bytes(), nil
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(buf.Bytes()); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return gzBuf.Bytes(), nil
}

func decode[V any](raw []byte, compressed bool) (V, error) {
	var zero V
	body := raw
	if compressed {
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return zero, errors.Wrap(err, "opening gzip cache entry")
		}
		defer gr.Close()
		decompressed, err := io.ReadAll(gr)
		if err != nil {
			return zero, errors.Wrap(err, "decompressing cache entry")
		}
		body = decompressed
	}

	var e entry[V]
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&e); err != nil {
		return zero, errors.Wrap(err, "decoding cache entry")
	}
	return e.Value, nil
}
