package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/uptag/pkg/check"
	"github.com/lucas-albers-lz4/uptag/pkg/dockerfile"
	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
	"github.com/lucas-albers-lz4/uptag/pkg/fileutil"
	"github.com/lucas-albers-lz4/uptag/pkg/image"
	"github.com/lucas-albers-lz4/uptag/pkg/registry"
)

// reportOptions holds the flag values shared by the check and compose
// commands.
type reportOptions struct {
	format            string
	outputFile        string
	noColor           bool
	concurrency       int
	requestTimeout    time.Duration
	pageSize          int
	requestsPerSecond float64
	plainHTTP         bool
}

// tagSourceForOptions builds the registry client used by the check commands.
// Tests swap it for a stub source.
var tagSourceForOptions = newRegistryClient

func newRegistryClient(opts *reportOptions) registry.TagSource {
	return registry.NewClient(
		registry.WithTimeout(opts.requestTimeout),
		registry.WithPageSize(opts.pageSize),
		registry.WithRequestsPerSecond(opts.requestsPerSecond),
		registry.WithPlainHTTP(opts.plainHTTP),
	)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [DOCKERFILE]",
		Short: "Check the base images of a Dockerfile for newer tags",
		Long: `Check reads the FROM statements of a Dockerfile (./Dockerfile unless a
path is given), fetches the available tags for each image from its registry,
and reports the best compatible and breaking updates per image.

Every tagged image needs a pattern comment; one without it is reported as a
failed check:

    # uptag pattern: "<!>.<>.<>"
    FROM nginx:1.27.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	addReportFlags(cmd)
	return cmd
}

// addReportFlags registers the flags shared by the check and compose
// commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-format", "o", outputFormatText, "output format (text, json, or yaml)")
	cmd.Flags().String("output-file", "", "write the report to a file instead of stdout (refuses to overwrite)")
	cmd.Flags().Bool("no-color", false, "disable colored output")
	cmd.Flags().Int("concurrency", check.DefaultConcurrency, "number of images checked in parallel")
	cmd.Flags().Duration("request-timeout", registry.DefaultTimeout, "timeout per registry request")
	cmd.Flags().Int("page-size", registry.DefaultPageSize, "tags requested per page")
	cmd.Flags().Float64("requests-per-second", registry.DefaultRequestsPerSecond, "per-host registry request rate")
	cmd.Flags().Bool("plain-http", false, "use HTTP instead of HTTPS for registry requests (for local registries)")
}

// reportOptionsFromFlags collects the shared flag values and validates the
// output format.
func reportOptionsFromFlags(cmd *cobra.Command) (*reportOptions, error) {
	opts := &reportOptions{}
	flagErr := func(name string, err error) error {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("failed to get %s flag: %w", name, err),
		}
	}

	var err error
	if opts.format, err = cmd.Flags().GetString("output-format"); err != nil {
		return nil, flagErr("output-format", err)
	}
	if opts.outputFile, err = cmd.Flags().GetString("output-file"); err != nil {
		return nil, flagErr("output-file", err)
	}
	if opts.noColor, err = cmd.Flags().GetBool("no-color"); err != nil {
		return nil, flagErr("no-color", err)
	}
	if opts.concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, flagErr("concurrency", err)
	}
	if opts.requestTimeout, err = cmd.Flags().GetDuration("request-timeout"); err != nil {
		return nil, flagErr("request-timeout", err)
	}
	if opts.pageSize, err = cmd.Flags().GetInt("page-size"); err != nil {
		return nil, flagErr("page-size", err)
	}
	if opts.requestsPerSecond, err = cmd.Flags().GetFloat64("requests-per-second"); err != nil {
		return nil, flagErr("requests-per-second", err)
	}
	if opts.plainHTTP, err = cmd.Flags().GetBool("plain-http"); err != nil {
		return nil, flagErr("plain-http", err)
	}

	switch opts.format {
	case outputFormatText, outputFormatJSON, outputFormatYAML:
	default:
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitUnsupportedOutputFormat,
			Err:  fmt.Errorf("unsupported output format %q (supported: text, json, yaml)", opts.format),
		}
	}

	if opts.noColor {
		color.NoColor = true
	}

	return opts, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := defaultDockerfilePath
	if len(args) > 0 {
		path = args[0]
	}

	opts, err := reportOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	refs, err := extractDockerfile(path)
	if err != nil {
		return err
	}

	checker := check.NewChecker(tagSourceForOptions(opts), check.WithConcurrency(opts.concurrency))
	results := checker.Check(getCommandContext(cmd), refs)
	report := check.NewReport(results)

	stdout, stderr := renderTextReport(report)
	if err := emitReport(cmd, opts, newReportPayload(report), stdout, stderr); err != nil {
		return err
	}
	return exitForLevel(report.Level())
}

// extractDockerfile loads the image references of one Dockerfile, mapping
// missing files and parse failures onto their exit codes.
func extractDockerfile(path string) ([]image.Reference, error) {
	exists, err := fileutil.FileExists(AppFs, path)
	if err != nil {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to access %s: %w", path, err),
		}
	}
	if !exists {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("dockerfile not found: %s", path),
		}
	}

	refs, err := dockerfile.Extract(AppFs, path)
	if err != nil {
		return nil, &exitcodes.ExitCodeError{
			Code: exitcodes.ExitFileParsingError,
			Err:  err,
		}
	}
	return refs, nil
}

// exitForLevel converts the report level into the command's exit status.
// Update outcomes surface as exit codes only; the report already carries
// the detail, so nothing extra is printed for them.
func exitForLevel(level check.Level) error {
	switch level {
	case check.LevelNoUpdates:
		return nil
	case check.LevelCompatibleUpdate:
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitCompatibleUpdates,
			Err:  errors.New("compatible updates available"),
		}
	case check.LevelBreakingUpdate:
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitBreakingUpdates,
			Err:  errors.New("breaking updates available"),
		}
	default:
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitCheckFailures,
			Err:  errors.New("one or more image checks failed"),
		}
	}
}
