package cmd

import (
	"io"
	"os"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/rs/zerolog"

	"github.com/voltree-archive/voltree/pkg/api"
	"github.com/voltree-archive/voltree/pkg/backend/mem"
	"github.com/voltree-archive/voltree/pkg/backend/native"
	"github.com/voltree-archive/voltree/pkg/backend/passthru"
	"github.com/voltree-archive/voltree/pkg/backend/s3"
	"github.com/voltree-archive/voltree/pkg/handle"
	"github.com/voltree-archive/voltree/pkg/vol"
)

func startTimer() *timer {
	t := &timer{}
	t.Start()
	return t
}

type timer struct {
	start time.Time
}

func (t *timer) Start() {
	t.start = time.Now()
}

func (t *timer) String() string {
	delta := time.Now().Sub(t.start)
	return delta.String()
}

var logLevels = map[string]zerolog.Level{
	"CRITICAL": zerolog.FatalLevel,
	"ERROR":    zerolog.ErrorLevel,
	"WARNING":  zerolog.WarnLevel,
	"INFO":     zerolog.InfoLevel,
	"DEBUG":    zerolog.DebugLevel,
	"TRACE":    zerolog.TraceLevel,
}

// newLogger builds the command logger from the Log config section. The
// returned closer is a no-op for console logging.
func newLogger() (zerolog.Logger, func(), error) {
	level, ok := logLevels[strings.ToUpper(conf.Log.Level)]
	if !ok {
		return zerolog.Nop(), nil, errors.Errorf("invalid log level '%s'", conf.Log.Level)
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	closeFn := func() {}
	if conf.Log.File != "" {
		f, err := os.OpenFile(conf.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, errors.Wrapf(err, "cannot open logfile '%s'", conf.Log.File)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closeFn, nil
}

func s3Options() map[string]any {
	return map[string]any{
		"endpoint":  conf.S3.Endpoint,
		"accessKey": conf.S3.AccessKeyID,
		"secretKey": conf.S3.AccessKey,
		"bucket":    conf.S3.Bucket,
		"region":    conf.S3.Region,
		"prefix":    conf.S3.Prefix,
		"useSSL":    conf.S3.UseSSL,
	}
}

// newLibrary builds a library with all configured connector classes
// registered.
func newLibrary(logger zerolog.Logger) (*api.Library, error) {
	lib, err := api.New(nil, logger)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create library")
	}
	if _, err := lib.RegisterBuiltin(mem.Descriptor()); err != nil {
		return nil, errors.Wrap(err, "cannot register memory connector")
	}
	if _, err := lib.RegisterBuiltin(native.Descriptor(logger)); err != nil {
		return nil, errors.Wrap(err, "cannot register native connector")
	}
	if conf.S3 != nil && conf.S3.Endpoint != "" {
		desc, err := s3.Descriptor(&vol.Config{Connector: "s3", Options: s3Options()}, logger)
		if err != nil {
			return nil, errors.Wrap(err, "cannot create s3 connector")
		}
		if _, err := lib.RegisterBuiltin(desc); err != nil {
			return nil, errors.Wrap(err, "cannot register s3 connector")
		}
	}
	if conf.Passthru {
		cls, ok := lib.Classes().LookupByName(conf.Connector)
		if !ok {
			return nil, errors.Errorf("passthru needs a registered inner connector, '%s' is not", conf.Connector)
		}
		desc, err := passthru.Descriptor(cls.Connector(), logger)
		if err != nil {
			return nil, errors.Wrap(err, "cannot create passthru connector")
		}
		if _, err := lib.RegisterBuiltin(desc); err != nil {
			return nil, errors.Wrap(err, "cannot register passthru connector")
		}
	}
	return lib, nil
}

// accessConfig names the connector class every command dispatches
// through.
func accessConfig() *vol.Config {
	name := conf.Connector
	if conf.Passthru {
		name = "passthru"
	}
	cfg := &vol.Config{Connector: name}
	if conf.Connector == "s3" {
		cfg.Options = s3Options()
	}
	return cfg
}

func splitObjectPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func selfLoc() *vol.Loc {
	return &vol.Loc{Type: vol.LocSelf}
}

func nameLoc(name string) *vol.Loc {
	return &vol.Loc{Type: vol.LocName, Name: name}
}

// openParent resolves the group containing the last path element,
// creating missing intermediate groups when create is set. The second
// return value tells whether the caller owns the handle and has to
// close it.
func openParent(lib *api.Library, fileH handle.Handle, parts []string, create bool) (handle.Handle, bool, error) {
	current := fileH
	owned := false
	for _, part := range parts {
		exists, err := lib.LinkExists(current, nameLoc(part), nil)
		if err != nil {
			if owned {
				_ = lib.Close(current)
			}
			return 0, false, errors.Wrapf(err, "cannot check for group '%s'", part)
		}
		var next handle.Handle
		if exists {
			next, err = lib.GroupOpen(current, selfLoc(), part, nil, nil)
		} else if create {
			next, err = lib.GroupCreate(current, selfLoc(), part, nil, nil, nil)
		} else {
			err = errors.Errorf("group '%s' does not exist", part)
		}
		if owned {
			_ = lib.Close(current)
		}
		if err != nil {
			return 0, false, errors.Wrapf(err, "cannot open group '%s'", part)
		}
		current = next
		owned = true
	}
	return current, owned, nil
}
