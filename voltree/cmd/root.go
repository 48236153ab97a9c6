package cmd

import (
	"fmt"
	"os"
	"strings"

	"emperror.dev/emperror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/voltree-archive/voltree/config"
	"github.com/voltree-archive/voltree/version"
)

// all possible flags of all modules go here
var persistentFlagConfigFile string

var persistentFlagLogfile string
var persistentFlagLoglevel string
var persistentFlagConnector string
var persistentFlagPassthru bool

var persistentFlagS3Endpoint string
var persistentFlagS3AccessKeyID string
var persistentFlagS3SecretAccessKey string
var persistentFlagS3Region string
var persistentFlagS3Bucket string

var conf *config.VoltreeConfig

var rootCmd = &cobra.Command{
	Use:   "voltree",
	Short: "voltree is a container store with pluggable storage connectors",
	Long: fmt.Sprintf(`A hierarchical container store dispatching through pluggable
storage connectors (native, memory, s3).
Version %s (%s)`, version.Version, version.ShortCommit()),
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func getFlagString(cmd *cobra.Command, flag string) string {
	str, err := cmd.Flags().GetString(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(fmt.Errorf("cannot get flag %s: %v", flag, err))
	}
	return str
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	b, err := cmd.Flags().GetBool(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(fmt.Errorf("cannot get flag %s: %v", flag, err))
	}
	return b
}

func initConfig() {

	// load config file
	if persistentFlagConfigFile != "" {
		data, err := os.ReadFile(persistentFlagConfigFile)
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error reading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
		conf, err = config.LoadVoltreeConfig(string(data))
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error loading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
	} else {
		var err error
		conf, err = config.LoadVoltreeConfig(string(config.DefaultConfig))
		if err != nil {
			_ = rootCmd.Help()
			fmt.Fprintf(os.Stderr, "error loading default config: %v\n", err)
			os.Exit(1)
		}
	}

	// overwrite config file with command line data
	if persistentFlagLogfile != "" {
		conf.Log.File = persistentFlagLogfile
	}
	if persistentFlagLoglevel != "" {
		conf.Log.Level = persistentFlagLoglevel
	}
	if persistentFlagConnector != "" {
		conf.Connector = strings.ToLower(persistentFlagConnector)
	}
	if persistentFlagPassthru {
		conf.Passthru = true
	}
	if persistentFlagS3Endpoint != "" {
		conf.S3.Endpoint = persistentFlagS3Endpoint
	}
	if persistentFlagS3Region != "" {
		conf.S3.Region = persistentFlagS3Region
	}
	if persistentFlagS3AccessKeyID != "" {
		conf.S3.AccessKeyID = persistentFlagS3AccessKeyID
	}
	if persistentFlagS3SecretAccessKey != "" {
		conf.S3.AccessKey = persistentFlagS3SecretAccessKey
	}
	if persistentFlagS3Bucket != "" {
		conf.S3.Bucket = persistentFlagS3Bucket
	}
}

func init() {

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&persistentFlagConfigFile, "config", "", "config file (default is $HOME/.voltree.toml)")

	rootCmd.PersistentFlags().StringVar(&persistentFlagLogfile, "log-file", "", "log output file (default is console)")
	emperror.Panic(viper.BindPFlag("Log.File", rootCmd.PersistentFlags().Lookup("log-file")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagLoglevel, "log-level", "", "log level (CRITICAL|ERROR|WARNING|INFO|DEBUG|TRACE)")
	emperror.Panic(viper.BindPFlag("Log.Level", rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagConnector, "connector", "", "storage connector (native|memory|s3)")
	emperror.Panic(viper.BindPFlag("Connector", rootCmd.PersistentFlags().Lookup("connector")))

	rootCmd.PersistentFlags().BoolVar(&persistentFlagPassthru, "passthru", false, "route calls through the logging passthru connector")
	emperror.Panic(viper.BindPFlag("Passthru", rootCmd.PersistentFlags().Lookup("passthru")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagS3Endpoint, "s3-endpoint", "", "endpoint for S3 buckets")
	emperror.Panic(viper.BindPFlag("S3.Endpoint", rootCmd.PersistentFlags().Lookup("s3-endpoint")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagS3AccessKeyID, "s3-access-key-id", "", "access key id for S3 buckets")
	emperror.Panic(viper.BindPFlag("S3.AccessKeyID", rootCmd.PersistentFlags().Lookup("s3-access-key-id")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagS3SecretAccessKey, "s3-secret-access-key", "", "secret access key for S3 buckets")
	emperror.Panic(viper.BindPFlag("S3.AccessKey", rootCmd.PersistentFlags().Lookup("s3-secret-access-key")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagS3Region, "s3-region", "", "region for S3 access")
	emperror.Panic(viper.BindPFlag("S3.Region", rootCmd.PersistentFlags().Lookup("s3-region")))

	rootCmd.PersistentFlags().StringVar(&persistentFlagS3Bucket, "s3-bucket", "", "bucket for S3 containers")
	emperror.Panic(viper.BindPFlag("S3.Bucket", rootCmd.PersistentFlags().Lookup("s3-bucket")))

	initInit()
	initPut()
	initGet()
	initLs()
	initStat()
	initRm()
	initConnectors()

	rootCmd.AddCommand(initCmd, putCmd, getCmd, lsCmd, statCmd, rmCmd, connectorsCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
