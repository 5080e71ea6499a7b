// Package blobstore reads and writes whole blobs named either by a local path
// or by a gs://bucket/object URI.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const gcsScheme = "gs://"

var ErrNoGCSClient = errors.New("gs:// location used without a GCS client")

// IsGCS reports whether loc names a GCS object.
func IsGCS(loc string) bool {
	return strings.HasPrefix(loc, gcsScheme)
}

// SplitGCS splits gs://bucket/object into its bucket and object names.
func SplitGCS(loc string) (string, string, error) {
	rest := strings.TrimPrefix(loc, gcsScheme)
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", fmt.Errorf("%q is not of the form gs://bucket/object", loc)
	}
	return rest[:i], rest[i+1:], nil
}

// Join appends name to the directory or object prefix dir.
func Join(dir, name string) string {
	if IsGCS(dir) {
		return gcsScheme + path.Join(strings.TrimPrefix(dir, gcsScheme), name)
	}
	return filepath.Join(dir, name)
}

// Base returns the last element of loc.
func Base(loc string) string {
	if IsGCS(loc) {
		return path.Base(loc)
	}
	return filepath.Base(loc)
}

type Store struct {
	gcs *storage.Client
}

// New returns a Store.  gcs may be nil if only local paths will be used.
func New(gcs *storage.Client) *Store {
	return &Store{gcs: gcs}
}

func (s *Store) Read(ctx context.Context, loc string) ([]byte, error) {
	tracer := otel.Tracer("stlshade/blobstore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Read")
	defer span.End()
	span.SetAttributes(attribute.String("location", loc))

	data, err := s.read(ctx, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (s *Store) read(ctx context.Context, loc string) ([]byte, error) {
	if !IsGCS(loc) {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("while reading file: %w", err)
		}
		return data, nil
	}

	obj, err := s.object(loc)
	if err != nil {
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("while opening reader for object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("while reading from object: %w", err)
	}
	return data, nil
}

// Write replaces the blob at loc with data.
func (s *Store) Write(ctx context.Context, loc string, data []byte, contentType string) error {
	tracer := otel.Tracer("stlshade/blobstore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Write")
	defer span.End()
	span.SetAttributes(
		attribute.String("location", loc),
		attribute.Int("bytes", len(data)),
	)

	if err := s.write(ctx, loc, data, contentType); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *Store) write(ctx context.Context, loc string, data []byte, contentType string) error {
	if !IsGCS(loc) {
		if err := os.WriteFile(loc, data, 0644); err != nil {
			return fmt.Errorf("while writing file: %w", err)
		}
		return nil
	}

	obj, err := s.object(loc)
	if err != nil {
		return err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	// Disable chunking; images are written in one piece.
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("while writing to object writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing object writer: %w", err)
	}
	return nil
}

func (s *Store) object(loc string) (*storage.ObjectHandle, error) {
	if s.gcs == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGCSClient, loc)
	}
	bucket, object, err := SplitGCS(loc)
	if err != nil {
		return nil, err
	}
	return s.gcs.Bucket(bucket).Object(object), nil
}
