package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arthurfeeney/nrlsh/blobstore"
	miniostore "github.com/arthurfeeney/nrlsh/blobstore/minio"
	s3store "github.com/arthurfeeney/nrlsh/blobstore/s3"
)

// location is a parsed dataset URI.
type location struct {
	scheme string // "s3", "minio" or "file"
	host   string // minio endpoint
	bucket string
	name   string // object key or file base name
	dir    string // local directory
}

// parseLocation accepts s3://bucket/key, minio://host[:port]/bucket/key or
// a local path.
func parseLocation(uri string) (location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		if uri == "" {
			return location{}, errors.New("empty dataset location")
		}
		return location{scheme: "file", dir: filepath.Dir(uri), name: filepath.Base(uri)}, nil
	}

	parts := strings.Split(rest, "/")
	switch scheme {
	case "s3":
		if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
			return location{}, fmt.Errorf("s3 location %q: want s3://bucket/key", uri)
		}
		return location{scheme: scheme, bucket: parts[0], name: strings.Join(parts[1:], "/")}, nil
	case "minio":
		if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[len(parts)-1] == "" {
			return location{}, fmt.Errorf("minio location %q: want minio://host/bucket/key", uri)
		}
		return location{scheme: scheme, host: parts[0], bucket: parts[1], name: strings.Join(parts[2:], "/")}, nil
	case "file":
		return location{scheme: scheme, dir: filepath.Dir(rest), name: filepath.Base(rest)}, nil
	default:
		return location{}, fmt.Errorf("unsupported dataset scheme %q", scheme)
	}
}

// open returns the store holding loc and the object name within it.
// MinIO credentials come from MINIO_ACCESS_KEY and MINIO_SECRET_KEY; TLS is
// enabled with NRLSH_MINIO_SECURE=true.
func (loc location) open(ctx context.Context) (blobstore.Store, error) {
	switch loc.scheme {
	case "s3":
		store, err := s3store.New(ctx, loc.bucket, "")
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		client, err := minio.New(loc.host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: os.Getenv("NRLSH_MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, loc.bucket, ""), nil
	default:
		return blobstore.NewLocalStore(loc.dir), nil
	}
}
