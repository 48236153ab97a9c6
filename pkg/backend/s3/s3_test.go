package s3

import (
	"testing"

	"emperror.dev/errors"
	"github.com/go-test/deep"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/vol"
)

func TestFromConfig(t *testing.T) {
	cfg := &vol.Config{
		Connector: "s3",
		Options: map[string]any{
			"endpoint":  "minio.example.com:9000",
			"accessKey": "key",
			"secretKey": "secret",
			"bucket":    "containers",
			"region":    "us-east-1",
			"prefix":    "voltree",
			"useSSL":    false,
		},
	}
	opts, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("cannot parse config - %v", err)
	}
	want := &Options{
		Endpoint:  "minio.example.com:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "containers",
		Region:    "us-east-1",
		Prefix:    "voltree",
		UseSSL:    false,
	}
	if diff := deep.Equal(want, opts); diff != nil {
		t.Errorf("parsed options differ: %v", diff)
	}
}

func TestFromConfigRejectsIncomplete(t *testing.T) {
	if _, err := FromConfig(nil); !errors.Is(err, vol.ErrInvalidArgument) {
		t.Errorf("nil config accepted, got %v", err)
	}
	cfg := &vol.Config{Connector: "s3", Options: map[string]any{"endpoint": "host:9000"}}
	if _, err := FromConfig(cfg); !errors.Is(err, vol.ErrInvalidArgument) {
		t.Errorf("config without bucket accepted, got %v", err)
	}
}

func TestConnectorIdentity(t *testing.T) {
	opts := &Options{Endpoint: "minio.example.com:9000", Bucket: "containers"}
	conn, err := NewConnector(opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("cannot create connector - %v", err)
	}
	if conn.ConnectorName() != "s3" {
		t.Errorf("connector name '%s'", conn.ConnectorName())
	}
	// the s3 flavour carries the full container capability set
	var asAny any = conn
	if _, ok := asAny.(vol.FileConnector); !ok {
		t.Errorf("s3 connector lacks the file capability")
	}
	if _, ok := asAny.(vol.DatasetConnector); !ok {
		t.Errorf("s3 connector lacks the dataset capability")
	}
}

func TestNormalizeContainerName(t *testing.T) {
	cases := map[string]string{
		"plain":       "plain",
		"/leading":    "leading",
		"deep/nested": "deep/nested",
		"win\\style":  "win/style",
		"":            "",
	}
	for in, want := range cases {
		if got := normalizeContainerName(in); got != want {
			t.Errorf("normalize('%s') = '%s', want '%s'", in, got, want)
		}
	}
}
