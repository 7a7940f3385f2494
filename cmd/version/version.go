package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X he-demo/cmd/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("he-demo %s (%s) %s %s/%s\n", Version, GitCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
