// Package main implements the uptag command-line interface.
//
// uptag reads the container images referenced by Dockerfiles and
// docker-compose files, asks their registries for the available tags, and
// reports which images have newer compatible or breaking versions. The main
// commands are:
//
//   - check: check the FROM images of a Dockerfile
//   - compose: check every buildable service of a docker-compose file
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/uptag/pkg/fileutil"
	"github.com/lucas-albers-lz4/uptag/pkg/log"
	"github.com/lucas-albers-lz4/uptag/pkg/version"
)

// Global flag variables
var (
	cfgFile      string
	debugEnabled bool
	logLevel     string
)

// AppFs is the filesystem used by all commands. Tests swap it for an
// in-memory one through SetFs.
var AppFs = afero.NewOsFs()

// SetFs replaces AppFs and returns a function that restores the previous one.
func SetFs(fs afero.Fs) func() {
	oldFs := AppFs
	AppFs = fs
	return func() { AppFs = oldFs }
}

var rootCmd = newRootCmd()

// newRootCmd builds the root command with all subcommands and persistent
// flags attached. Tests build their own instance to keep flag state isolated.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uptag",
		Short: "Check container base images for newer tags",
		Long: `uptag checks the container images referenced by Dockerfiles and
docker-compose files against their registries and reports newer tags.

A pattern comment above a FROM statement declares which tags are comparable
and which positions break compatibility when they grow:

    # uptag pattern: "<!>.<>.<>"
    FROM nginx:1.27.0

Tags matching the pattern are compared to the current one; the best
compatible and the best breaking update are reported per image. The exit
code summarizes the run: 0 no updates, 1 compatible updates, 2 breaking
updates, 3 failed checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configureLogging()
			bindFlagOverrides(cmd)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.uptag.yaml)")
	cmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.Version = version.Version

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newComposeCmd())

	return cmd
}

func init() {
	cobra.OnInitialize(initConfig)
}

// configureLogging sets the global log level from the --debug and
// --log-level flags. --debug wins over --log-level.
func configureLogging() {
	level := log.LevelInfo
	if debugEnabled {
		level = log.LevelDebug
	} else if logLevel != "" {
		parsed, err := log.ParseLevel(logLevel)
		if err != nil {
			log.Warnf("Invalid log level %q, using %s", logLevel, level)
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
	log.Debug("uptag starting", "version", version.Version)
}

// initConfig loads the config file and UPTAG_* environment variables. A
// project-local .uptag.yaml wins over the one in the home directory.
func initConfig() {
	viper.SetFs(AppFs)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if local, err := fileutil.FileExists(AppFs, localConfigFile); err == nil && local {
		viper.SetConfigFile(localConfigFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// bindFlagOverrides lets config file and environment values stand in for
// flags the user did not pass on the command line.
func bindFlagOverrides(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !viper.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", viper.Get(f.Name))); err != nil {
			log.Warnf("Ignoring configured value for --%s: %v", f.Name, err)
		}
	})
}

// Execute runs the root command. Check outcomes and failures travel up as
// ExitCodeError values for main to unpack.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}
	return nil
}

// getRootCmd returns the root command, for tests that need to execute it.
func getRootCmd() *cobra.Command {
	return rootCmd
}

// executeCommand runs a cobra command with the given arguments, capturing
// its combined output. Used by tests.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()

	return buf.String(), err
}
