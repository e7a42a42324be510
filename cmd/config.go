package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hupe1980/graphbuild"
	"github.com/hupe1980/graphbuild/blobstore"
	"github.com/hupe1980/graphbuild/blobstore/minio"
	"github.com/hupe1980/graphbuild/blobstore/s3"
)

const envPrefix = "GRAPHBUILD"

// Store engines accepted by --store-engine.
const (
	engineLocal = "local"
	engineS3    = "s3"
	engineMinio = "minio"
)

// newViper returns a viper instance reading flags, environment variables
// prefixed with GRAPHBUILD, and graphbuild.yaml (in that order).
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("graphbuild")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, path := range []string{"/etc/graphbuild", "$HOME/.graphbuild", "."} {
		v.AddConfigPath(path)
	}
	return v
}

// readConfig loads the config file. A missing file is not an error unless it
// was named explicitly.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return newUsageError(fmt.Errorf("read config: %w", err))
	}
	return nil
}

// newLogger builds the logger selected by log.format and log.level.
func newLogger(v *viper.Viper, w io.Writer) (*graphbuild.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(logLevelConf))); err != nil {
		return nil, newUsageError(fmt.Errorf("log level: %w", err))
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format := v.GetString(logFormatConf); format {
	case "", "text":
		return graphbuild.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return graphbuild.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, newUsageError(fmt.Errorf("unknown log format %q", format))
	}
}

// openStore opens the configured artifact store. For the local engine
// without a prefix, name may be a path and the store is rooted at its
// directory; the returned name is relative to the store.
func openStore(ctx context.Context, v *viper.Viper, name string) (blobstore.BlobStore, string, error) {
	prefix := v.GetString(storePrefixConf)

	switch engine := v.GetString(storeEngineConf); engine {
	case "", engineLocal:
		if prefix == "" {
			return blobstore.NewLocalStore(filepath.Dir(name)), filepath.Base(name), nil
		}
		return blobstore.NewLocalStore(prefix), name, nil
	case engineS3:
		bucket := v.GetString(storeBucketConf)
		if bucket == "" {
			return nil, "", newUsageError(errors.New("s3 store requires a bucket"))
		}
		store, err := s3.New(ctx, bucket,
			s3.WithPrefix(prefix),
			s3.WithRegion(v.GetString(storeRegionConf)),
			s3.WithEndpoint(v.GetString(storeEndpointConf)),
		)
		if err != nil {
			return nil, "", err
		}
		return store, name, nil
	case engineMinio:
		store, err := minio.NewFromConfig(minio.Config{
			Endpoint:  v.GetString(storeEndpointConf),
			AccessKey: v.GetString(storeAccessKeyConf),
			SecretKey: v.GetString(storeSecretKeyConf),
			UseSSL:    v.GetBool(storeUseSSLConf),
			Region:    v.GetString(storeRegionConf),
			Bucket:    v.GetString(storeBucketConf),
			Prefix:    prefix,
		})
		if err != nil {
			return nil, "", newUsageError(err)
		}
		return store, name, nil
	default:
		return nil, "", newUsageError(fmt.Errorf("unknown store engine %q", engine))
	}
}

// buildOptions translates the bound configuration into library options.
func buildOptions(v *viper.Viper) []graphbuild.Option {
	opts := []graphbuild.Option{
		graphbuild.WithPartitions(v.GetInt(partitionsFlag)),
		graphbuild.WithBuckets(v.GetInt(bucketsFlag)),
		graphbuild.WithHash(v.GetString(hashFlag)),
		graphbuild.WithCompression(v.GetString(compressionFlag)),
		graphbuild.WithWorkers(v.GetInt(workersFlag)),
		graphbuild.WithMemoryLimit(v.GetInt64(memoryLimitFlag)),
		graphbuild.WithIOLimit(v.GetInt64(ioLimitFlag)),
	}
	if v.GetBool(dropSelfLoopsFlag) {
		opts = append(opts, graphbuild.WithSelfLoopPolicy(graphbuild.DropSelfLoops))
	}
	if v.GetBool(keepIntermediatesFlag) {
		opts = append(opts, graphbuild.WithKeepIntermediates())
	}
	if v.GetBool(emitLabelsFlag) {
		opts = append(opts, graphbuild.WithEmitLabels())
	}
	return opts
}
