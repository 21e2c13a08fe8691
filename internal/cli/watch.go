package cli

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest a source tree and re-ingest on file changes",
	Long: `Watch performs an initial ingest of the given directory (default:
current directory) and then re-ingests whenever source files change, with
changes debounced per the configured interval. Equivalent to "ingest --watch".
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watchFlag = true
		return runIngest(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	watchCmd.Flags().StringVar(&jsonFlag, "json", "", "Also export the index as JSON to the given path")
}
