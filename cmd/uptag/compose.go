package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/uptag/pkg/check"
	"github.com/lucas-albers-lz4/uptag/pkg/compose"
	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
	"github.com/lucas-albers-lz4/uptag/pkg/fileutil"
	"github.com/lucas-albers-lz4/uptag/pkg/image"
)

// serviceResult pairs a compose service with the report for its Dockerfile
// images.
type serviceResult struct {
	name   string
	report *check.Report
}

func newComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose [COMPOSE_FILE]",
		Short: "Check the Dockerfiles of a docker-compose file for newer base image tags",
		Long: `Compose reads a docker-compose file (./docker-compose.yml unless a path is
given), resolves the Dockerfile of every service with a build section, and
checks their FROM images the same way the check command does. The report
groups findings per service.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompose,
	}
	addReportFlags(cmd)
	return cmd
}

func runCompose(cmd *cobra.Command, args []string) error {
	path := defaultComposePath
	if len(args) > 0 {
		path = args[0]
	}

	opts, err := reportOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	exists, err := fileutil.FileExists(AppFs, path)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to access %s: %w", path, err),
		}
	}
	if !exists {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("compose file not found: %s", path),
		}
	}

	file, err := compose.Load(AppFs, path)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitFileParsingError,
			Err:  err,
		}
	}

	// All services are checked in one batch so the concurrency limit spans
	// the whole run; spans remember which slice of the results belongs to
	// which service.
	type span struct {
		name       string
		start, end int
	}
	var (
		refs  []image.Reference
		spans []span
	)
	for _, svc := range file.Services() {
		serviceRefs, err := extractDockerfile(svc.DockerfilePath)
		if err != nil {
			return fmt.Errorf("service %s: %w", svc.Name, err)
		}
		spans = append(spans, span{name: svc.Name, start: len(refs), end: len(refs) + len(serviceRefs)})
		refs = append(refs, serviceRefs...)
	}

	checker := check.NewChecker(tagSourceForOptions(opts), check.WithConcurrency(opts.concurrency))
	results := checker.Check(getCommandContext(cmd), refs)

	level := check.LevelNoUpdates
	serviceResults := make([]serviceResult, 0, len(spans))
	for _, s := range spans {
		report := check.NewReport(results[s.start:s.end])
		if l := report.Level(); l > level {
			level = l
		}
		serviceResults = append(serviceResults, serviceResult{name: s.name, report: report})
	}

	stdout, stderr := renderComposeText(serviceResults)
	if err := emitReport(cmd, opts, newComposePayload(serviceResults), stdout, stderr); err != nil {
		return err
	}
	return exitForLevel(level)
}
