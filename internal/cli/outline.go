package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/config"
	"github.com/quarry-dev/quarry/internal/index"
	"github.com/quarry-dev/quarry/internal/store"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the containment outline of an indexed file",
	Long: `Outline reads the saved index and prints the symbol tree of one file:
classes with their methods and fields, nested by containment, with line
spans. The file path is the root-relative path used at ingest time.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveRoot(nil)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(filepath.Join(rootDir, cfg.Output.DBPath))
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.Load()
	if err != nil {
		return err
	}

	rec := doc.Index.File(filepath.ToSlash(args[0]))
	if rec == nil {
		return fmt.Errorf("%s is not in the index; run `quarry ingest` first", args[0])
	}

	out, err := index.Outline(rec)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
