package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/graphbuild"
)

// Flag names and the viper keys they are bound to.
const (
	configFlag = "config"

	partitionsFlag        = "partitions"
	bucketsFlag           = "buckets"
	hashFlag              = "hash"
	compressionFlag       = "compression"
	workersFlag           = "workers"
	memoryLimitFlag       = "memory-limit"
	ioLimitFlag           = "io-limit"
	dropSelfLoopsFlag     = "drop-self-loops"
	keepIntermediatesFlag = "keep-intermediates"
	emitLabelsFlag        = "emit-labels"
	timeoutFlag           = "timeout"

	logFormatFlag = "log-format"
	logFormatConf = "log.format"
	logLevelFlag  = "log-level"
	logLevelConf  = "log.level"

	metricsTextfileFlag = "metrics-textfile"
	metricsTextfileConf = "metrics.textfile"

	storeEngineFlag    = "store-engine"
	storeEngineConf    = "store.engine"
	storeBucketFlag    = "store-bucket"
	storeBucketConf    = "store.bucket"
	storePrefixFlag    = "store-prefix"
	storePrefixConf    = "store.prefix"
	storeRegionFlag    = "store-region"
	storeRegionConf    = "store.region"
	storeEndpointFlag  = "store-endpoint"
	storeEndpointConf  = "store.endpoint"
	storeAccessKeyFlag = "store-access-key"
	storeAccessKeyConf = "store.access-key"
	storeSecretKeyFlag = "store-secret-key"
	storeSecretKeyConf = "store.secret-key"
	storeUseSSLFlag    = "store-use-ssl"
	storeUseSSLConf    = "store.use-ssl"
)

// addStoreFlags registers flags shared by every command that touches
// artifacts.
func addStoreFlags(flags *pflag.FlagSet) {
	flags.String(storeEngineFlag, engineLocal, "artifact store: 'local', 's3' or 'minio'")
	flags.String(storeBucketFlag, "", "bucket holding the artifacts (s3, minio)")
	flags.String(storePrefixFlag, "", "directory (local) or key prefix (s3, minio) for all artifacts")
	flags.String(storeRegionFlag, "", "region of the bucket")
	flags.String(storeEndpointFlag, "", "custom endpoint (minio host:port, or an S3-compatible URL)")
	flags.String(storeAccessKeyFlag, "", "static access key (minio)")
	flags.String(storeSecretKeyFlag, "", "static secret key (minio)")
	flags.Bool(storeUseSSLFlag, true, "use TLS for minio connections")

	flags.String(logFormatFlag, "text", "log format: 'text' or 'json'")
	flags.String(logLevelFlag, "info", "log level: 'debug', 'info', 'warn' or 'error'")
}

// addBuildFlags registers the pipeline tuning flags.
func addBuildFlags(flags *pflag.FlagSet) {
	flags.Int(partitionsFlag, graphbuild.DefaultPartitions, "number of label partitions (and resolution passes)")
	flags.Int(bucketsFlag, graphbuild.DefaultBuckets, "number of vertex buckets merged independently")
	flags.String(hashFlag, "elf", "label partition hash: 'elf', 'xxhash', 'murmur3' or 'crc32c'")
	flags.String(compressionFlag, "none", "intermediate compression: 'none', 'lz4' or 'zstd'")
	flags.Int(workersFlag, graphbuild.DefaultWorkers, "partitions or buckets processed concurrently")
	flags.Int64(memoryLimitFlag, 0, "memory budget in bytes for dictionaries and bucket merges (0 means unlimited)")
	flags.Int64(ioLimitFlag, 0, "artifact throughput limit in bytes per second (0 means unlimited)")
	flags.Bool(dropSelfLoopsFlag, false, "drop records whose subject and object are the same vertex")
	flags.Bool(keepIntermediatesFlag, false, "keep intermediate artifacts after the run")
	flags.Bool(emitLabelsFlag, false, "write the vertex label map to '<base>_labels'")
	flags.Duration(timeoutFlag, 0, "abort the build after this long (0 means no timeout)")
	flags.String(metricsTextfileFlag, "", "write Prometheus metrics to this file when the run ends")
}

// bindFlagsFunc returns a PreRun hook binding every flag in flags, plus the
// persistent store flags, to v.
//
// NOTE: if you add a new flag, add its key here too.
func bindFlagsFunc(v *viper.Viper) func(*cobra.Command, []string) {
	return func(command *cobra.Command, _ []string) {
		flags := command.Flags()

		for _, name := range []string{
			partitionsFlag, bucketsFlag, hashFlag, compressionFlag, workersFlag,
			memoryLimitFlag, ioLimitFlag, dropSelfLoopsFlag, keepIntermediatesFlag,
			emitLabelsFlag, timeoutFlag,
		} {
			if f := flags.Lookup(name); f != nil {
				mustBindPFlag(v, name, f)
			}
		}

		for conf, flag := range map[string]string{
			metricsTextfileConf: metricsTextfileFlag,
			logFormatConf:       logFormatFlag,
			logLevelConf:        logLevelFlag,
			storeEngineConf:     storeEngineFlag,
			storeBucketConf:     storeBucketFlag,
			storePrefixConf:     storePrefixFlag,
			storeRegionConf:     storeRegionFlag,
			storeEndpointConf:   storeEndpointFlag,
			storeAccessKeyConf:  storeAccessKeyFlag,
			storeSecretKeyConf:  storeSecretKeyFlag,
			storeUseSSLConf:     storeUseSSLFlag,
		} {
			if f := flags.Lookup(flag); f != nil {
				mustBindPFlag(v, conf, f)
			}
		}

		// MinIO tooling exports its own credential variables.
		mustBindEnv(v, storeAccessKeyConf, "GRAPHBUILD_STORE_ACCESS_KEY", "MINIO_ACCESS_KEY")
		mustBindEnv(v, storeSecretKeyConf, "GRAPHBUILD_STORE_SECRET_KEY", "MINIO_SECRET_KEY")
	}
}
