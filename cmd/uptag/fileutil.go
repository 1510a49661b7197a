package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
	"github.com/lucas-albers-lz4/uptag/pkg/fileutil"
	"github.com/lucas-albers-lz4/uptag/pkg/log"
)

// getCommandContext gets the context from a command or falls back to the
// background context.
func getCommandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// writeOutputFile writes a rendered report to outputFile, creating parent
// directories as needed. Existing files are never overwritten.
func writeOutputFile(outputFile string, data []byte) error {
	exists, err := afero.Exists(AppFs, outputFile)
	if err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("failed to check if output file exists: %w", err),
		}
	}
	if exists {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("output file '%s' already exists", outputFile),
		}
	}

	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := AppFs.MkdirAll(dir, fileutil.ReadWriteExecuteUserReadExecuteOthers); err != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitGeneralRuntimeError,
				Err:  fmt.Errorf("failed to create output directory %s: %w", dir, err),
			}
		}
	}

	if err := afero.WriteFile(AppFs, outputFile, data, fileutil.ReadWriteUserReadOthers); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitGeneralRuntimeError,
			Err:  fmt.Errorf("failed to write output file %s: %w", outputFile, err),
		}
	}

	log.Info("Report written", "path", outputFile)
	return nil
}
