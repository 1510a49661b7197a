package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/lucas-albers-lz4/uptag/pkg/check"
	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
)

// Arrow colors for text reports. color.NoColor disables them globally.
var (
	breakingColor   = color.New(color.FgRed)
	compatibleColor = color.New(color.FgGreen)
)

// reportPayload is the machine-readable form of one report, shared by the
// json and yaml output formats.
type reportPayload struct {
	BreakingUpdates   []updatePayload  `json:"breaking_updates,omitempty"`
	CompatibleUpdates []updatePayload  `json:"compatible_updates,omitempty"`
	NoUpdates         []string         `json:"no_updates,omitempty"`
	Failures          []failurePayload `json:"failures,omitempty"`
}

type updatePayload struct {
	Image  string `json:"image"`
	Target string `json:"target"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
}

type failurePayload struct {
	Image string `json:"image"`
	Error string `json:"error"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// composePayload nests one reportPayload per service, in declaration order.
type composePayload struct {
	Services []servicePayload `json:"services"`
}

type servicePayload struct {
	Service string `json:"service"`
	reportPayload
}

func newReportPayload(report *check.Report) reportPayload {
	var p reportPayload
	for _, res := range report.BreakingUpdates {
		p.BreakingUpdates = append(p.BreakingUpdates, newUpdatePayload(res, res.Updates.Breaking))
	}
	for _, res := range report.CompatibleUpdates {
		p.CompatibleUpdates = append(p.CompatibleUpdates, newUpdatePayload(res, res.Updates.Compatible))
	}
	for _, res := range report.NoUpdates {
		p.NoUpdates = append(p.NoUpdates, res.Image.String())
	}
	for _, res := range report.Failures {
		p.Failures = append(p.Failures, failurePayload{
			Image: res.Image.String(),
			Error: res.Err.Error(),
			File:  res.Image.Path,
			Line:  res.Image.Line,
		})
	}
	return p
}

func newUpdatePayload(res check.Result, update *check.Update) updatePayload {
	return updatePayload{
		Image:  res.Image.String(),
		Target: res.Image.WithTag(update.Tag).String(),
		File:   res.Image.Path,
		Line:   res.Image.Line,
	}
}

func newComposePayload(services []serviceResult) composePayload {
	p := composePayload{Services: make([]servicePayload, 0, len(services))}
	for _, svc := range services {
		p.Services = append(p.Services, servicePayload{
			Service:       svc.name,
			reportPayload: newReportPayload(svc.report),
		})
	}
	return p
}

// renderTextReport renders a report as text. Update and no-update sections
// belong on stdout; failures belong on stderr so pipelines reading the
// report stay clean.
func renderTextReport(report *check.Report) (stdout, stderr string) {
	var sections []string

	if n := len(report.BreakingUpdates); n > 0 {
		lines := []string{fmt.Sprintf("%d with breaking update:", n)}
		for _, res := range report.BreakingUpdates {
			lines = append(lines, updateLine(res, res.Updates.Breaking, breakingColor.Sprint("-!>")))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if n := len(report.CompatibleUpdates); n > 0 {
		lines := []string{fmt.Sprintf("%d with compatible update:", n)}
		for _, res := range report.CompatibleUpdates {
			lines = append(lines, updateLine(res, res.Updates.Compatible, compatibleColor.Sprint("->")))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if n := len(report.NoUpdates); n > 0 {
		lines := []string{fmt.Sprintf("%d with no updates:", n)}
		for _, res := range report.NoUpdates {
			lines = append(lines, res.Image.String())
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(sections) > 0 {
		stdout = strings.Join(sections, "\n\n") + "\n"
	}

	if n := len(report.Failures); n > 0 {
		lines := []string{fmt.Sprintf("%d with failure:", n)}
		for _, res := range report.Failures {
			lines = append(lines, fmt.Sprintf("%s: %v", res.Image.String(), res.Err))
		}
		stderr = strings.Join(lines, "\n") + "\n"
	}

	return stdout, stderr
}

func updateLine(res check.Result, update *check.Update, arrow string) string {
	return fmt.Sprintf("%s %s %s", res.Image.String(), arrow, res.Image.WithTag(update.Tag).String())
}

// renderComposeText renders per-service reports with each service's entries
// nested under its name.
func renderComposeText(services []serviceResult) (stdout, stderr string) {
	var outBlocks, errBlocks []string
	for _, svc := range services {
		serviceOut, serviceErr := renderTextReport(svc.report)
		if serviceOut != "" {
			outBlocks = append(outBlocks, svc.name+":\n"+indent(strings.TrimRight(serviceOut, "\n")))
		}
		if serviceErr != "" {
			errBlocks = append(errBlocks, svc.name+":\n"+indent(strings.TrimRight(serviceErr, "\n")))
		}
	}

	if len(outBlocks) > 0 {
		stdout = strings.Join(outBlocks, "\n\n") + "\n"
	}
	if len(errBlocks) > 0 {
		stderr = strings.Join(errBlocks, "\n") + "\n"
	}
	return stdout, stderr
}

// indent prefixes every non-empty line with two spaces.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

// emitReport writes the report in the requested format. Text reports split
// between stdout and stderr; json and yaml reports carry failures inside the
// payload and emit a single document.
func emitReport(cmd *cobra.Command, opts *reportOptions, payload interface{}, textOut, textErr string) error {
	switch opts.format {
	case outputFormatJSON:
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitGeneralRuntimeError,
				Err:  fmt.Errorf("failed to marshal report to JSON: %w", err),
			}
		}
		return writeReport(cmd, opts, string(data)+"\n", "")
	case outputFormatYAML:
		data, err := yaml.Marshal(payload)
		if err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitGeneralRuntimeError,
				Err:  fmt.Errorf("failed to marshal report to YAML: %w", err),
			}
		}
		return writeReport(cmd, opts, string(data), "")
	default:
		return writeReport(cmd, opts, textOut, textErr)
	}
}

// writeReport sends the rendered report to stdout or the requested output
// file. Failure text always goes to stderr.
func writeReport(cmd *cobra.Command, opts *reportOptions, stdout, stderr string) error {
	if stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), stderr)
	}
	if opts.outputFile != "" {
		return writeOutputFile(opts.outputFile, []byte(stdout))
	}
	if stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), stdout)
	}
	return nil
}
