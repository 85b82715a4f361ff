// Package blob defines the flat key to bytes store that holds booking
// records and the secondary index.
package blob

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a Store backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

var (
	ErrNotFound   = errors.New("blob_not_found")
	ErrInvalidKey = errors.New("blob_invalid_key")
)

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

type PutOptions struct {
	ContentType string
}

// Store is a key/value blob store. Put overwrites unconditionally, Get
// returns ErrNotFound for a missing key and List returns keys sorted
// ascending with pagination handled internally.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// JSON is the PutOptions used for every record and index write.
var JSON = PutOptions{ContentType: "application/json"}
