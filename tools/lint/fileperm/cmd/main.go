// Command fileperm-lint reports hardcoded file permission literals.
package main

import (
	"github.com/lucas-albers-lz4/uptag/tools/lint/fileperm"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(fileperm.Analyzer)
}
