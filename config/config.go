package config

import (
	_ "embed"
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Connectors lists the connector classes the command line can register.
var Connectors = map[string]string{
	"native":   "local directory container store",
	"memory":   "volatile in-process container store",
	"s3":       "bucket backed container store",
	"passthru": "logging wrapper around another connector",
}

//go:embed voltree.toml
var DefaultConfig []byte

// LogConfig steers the command line logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// S3Config carries the bucket connection for the s3 connector. The
// connector is only registered when an endpoint is configured.
type S3Config struct {
	Endpoint    string `toml:"endpoint"`
	AccessKeyID string `toml:"accesskeyid"`
	AccessKey   string `toml:"accesskey"`
	Region      string `toml:"region"`
	Bucket      string `toml:"bucket"`
	Prefix      string `toml:"prefix"`
	UseSSL      bool   `toml:"usessl"`
}

type InitConfig struct {
	Force bool `toml:"force"`
}

type PutConfig struct {
	ElementSize uint32 `toml:"elementsize"`
	Message     string `toml:"message"`
}

type StatConfig struct {
	Info []string `toml:"info"`
}

type LsConfig struct {
	Index string `toml:"index"`
	Order string `toml:"order"`
}

// VoltreeConfig is the aggregated command line configuration.
type VoltreeConfig struct {
	Connector string      `toml:"connector"`
	Passthru  bool        `toml:"passthru"`
	TempDir   string      `toml:"tempdir"`
	Log       LogConfig   `toml:"Log"`
	S3        *S3Config   `toml:"S3"`
	Init      *InitConfig `toml:"Init"`
	Put       *PutConfig  `toml:"Put"`
	Stat      *StatConfig `toml:"Stat"`
	Ls        *LsConfig   `toml:"Ls"`
}

// LoadVoltreeConfig parses a toml config on top of the built-in
// defaults.
func LoadVoltreeConfig(data string) (*VoltreeConfig, error) {
	var conf = &VoltreeConfig{
		Connector: "native",
		TempDir:   os.TempDir(),
		Log: LogConfig{
			Level: "ERROR",
		},
		S3:   &S3Config{UseSSL: true},
		Init: &InitConfig{},
		Put: &PutConfig{
			ElementSize: 1,
		},
		Stat: &StatConfig{
			Info: []string{"container", "object", "attributes"},
		},
		Ls: &LsConfig{
			Index: "name",
			Order: "inc",
		},
	}
	if _, err := toml.Decode(data, conf); err != nil {
		return nil, errors.Wrap(err, "error on loading config")
	}
	conf.Connector = strings.ToLower(conf.Connector)
	if !slices.Contains(maps.Keys(Connectors), conf.Connector) {
		return nil, errors.Errorf("unknown connector '%s' please use %v", conf.Connector, maps.Keys(Connectors))
	}
	return conf, nil
}
