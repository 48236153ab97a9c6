// Package s3 stores containers in an S3 bucket. It reuses the native
// container format: superblock, catalog and content addressed payloads
// become objects under <prefix>/<container>/, the tree logic itself is
// shared with the native connector.
package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"emperror.dev/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/backend/native"
	"github.com/voltree-archive/voltree/pkg/vol"
)

// Options configures the bucket connection. It is usually filled from a
// connector config via FromConfig.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// FromConfig extracts the bucket options of a connector config.
func FromConfig(cfg *vol.Config) (*Options, error) {
	if cfg == nil {
		return nil, errors.Wrap(vol.ErrInvalidArgument, "s3 connector needs a config")
	}
	opts := &Options{
		Endpoint:  cfg.StringOption("endpoint", ""),
		AccessKey: cfg.StringOption("accessKey", ""),
		SecretKey: cfg.StringOption("secretKey", ""),
		Bucket:    cfg.StringOption("bucket", ""),
		Region:    cfg.StringOption("region", ""),
		Prefix:    cfg.StringOption("prefix", ""),
		UseSSL:    cfg.BoolOption("useSSL", true),
	}
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.Wrap(vol.ErrInvalidArgument, "s3 connector needs endpoint and bucket")
	}
	return opts, nil
}

// NewConnector builds the s3 flavour of the container connector.
func NewConnector(opts *Options, logger zerolog.Logger) (*native.Connector, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create s3 client for '%s'", opts.Endpoint)
	}
	opener := func(container string) (native.BlobStore, error) {
		container = normalizeContainerName(container)
		if container == "" {
			return nil, errors.New("empty container name")
		}
		prefix := container
		if opts.Prefix != "" {
			prefix = opts.Prefix + "/" + container
		}
		return &bucketStore{
			client: client,
			bucket: opts.Bucket,
			prefix: prefix,
			ctx:    context.Background(),
		}, nil
	}
	return native.NewConnectorWithStore("s3", opener, logger), nil
}

// Descriptor returns the built-in class descriptor for the s3 connector.
func Descriptor(cfg *vol.Config, logger zerolog.Logger) (*vol.ClassDescriptor, error) {
	opts, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := NewConnector(opts, logger)
	if err != nil {
		return nil, err
	}
	return &vol.ClassDescriptor{
		Version:   vol.DescriptorVersion,
		Value:     vol.ValueS3,
		Name:      "s3",
		Connector: conn,
	}, nil
}

// bucketStore maps the blob store surface onto one key prefix of a
// bucket.
type bucketStore struct {
	client *minio.Client
	bucket string
	prefix string
	ctx    context.Context
}

var _ native.BlobStore = &bucketStore{}

func (bs *bucketStore) key(key string) string {
	return bs.prefix + "/" + key
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).StatusCode == http.StatusNotFound
}

func (bs *bucketStore) Get(key string) ([]byte, error) {
	object, err := bs.client.GetObject(bs.ctx, bs.bucket, bs.key(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get '%s/%s'", bs.bucket, bs.key(key))
	}
	defer object.Close()
	data, err := io.ReadAll(object)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(native.ErrNotFound, "blob '%s'", key)
		}
		return nil, errors.Wrapf(err, "cannot read '%s/%s'", bs.bucket, bs.key(key))
	}
	return data, nil
}

func (bs *bucketStore) Put(key string, data []byte) error {
	_, err := bs.client.PutObject(bs.ctx, bs.bucket, bs.key(key), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/cbor",
	})
	if err != nil {
		return errors.Wrapf(err, "cannot put '%s/%s'", bs.bucket, bs.key(key))
	}
	return nil
}

func (bs *bucketStore) Delete(key string) error {
	if err := bs.client.RemoveObject(bs.ctx, bs.bucket, bs.key(key), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, "cannot remove '%s/%s'", bs.bucket, bs.key(key))
	}
	return nil
}

func (bs *bucketStore) Exists(key string) (bool, error) {
	if _, err := bs.client.StatObject(bs.ctx, bs.bucket, bs.key(key), minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "cannot stat '%s/%s'", bs.bucket, bs.key(key))
	}
	return true, nil
}

func (bs *bucketStore) DeleteAll() error {
	for info := range bs.client.ListObjects(bs.ctx, bs.bucket, minio.ListObjectsOptions{
		Prefix:    bs.prefix + "/",
		Recursive: true,
	}) {
		if info.Err != nil {
			return errors.Wrapf(info.Err, "cannot list '%s/%s'", bs.bucket, bs.prefix)
		}
		if err := bs.client.RemoveObject(bs.ctx, bs.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return errors.Wrapf(err, "cannot remove '%s/%s'", bs.bucket, info.Key)
		}
	}
	return nil
}

// normalizeContainerName guards against path style names leaking into
// object keys.
func normalizeContainerName(name string) string {
	return strings.Trim(strings.ReplaceAll(name, "\\", "/"), "/")
}
