package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) {
	if short, _ := cmd.Flags().GetBool("short"); short {
		cmd.Println(version)
		return
	}

	cmd.Printf("leadsync version %s\n", version)
	commit, modified := vcsInfo()
	if commit != "" {
		if modified {
			commit += " (modified)"
		}
		cmd.Printf("  commit: %s\n", commit)
	}
	cmd.Printf("  go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsInfo returns the short VCS revision stamped by the Go toolchain.
func vcsInfo() (revision string, modified bool) {
	info, ok := readBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return revision, modified
}
