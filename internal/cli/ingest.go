package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/quarry-dev/quarry/internal/config"
	"github.com/quarry-dev/quarry/internal/driver"
	"github.com/quarry-dev/quarry/internal/export"
	"github.com/quarry-dev/quarry/internal/ingest"
	"github.com/quarry-dev/quarry/internal/store"
	"github.com/quarry-dev/quarry/internal/symbol"
	"github.com/quarry-dev/quarry/internal/watcher"
)

var (
	quietFlag bool
	watchFlag bool
	jsonFlag  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Ingest a source tree and build the symbol index",
	Long: `Ingest walks the given directory (default: current directory), parses
every recognized source file, and assembles the unified symbol index.

The index lands in the configured SQLite snapshot and, optionally, a JSON
export. Parse errors and path collisions are reported as diagnostics; no
per-file failure aborts the run.

Examples:
  # Ingest the current directory
  quarry ingest

  # Ingest a specific directory and export JSON
  quarry ingest ./repo --json index.json

  # Re-ingest automatically on file changes
  quarry ingest --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	ingestCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-ingest")
	ingestCmd.Flags().StringVar(&jsonFlag, "json", "", "Also export the index as JSON to the given path")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, stopping...")
		cancel()
	}()

	rootDir, err := resolveRoot(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if jsonFlag != "" {
		cfg.Output.JSONPath = jsonFlag
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	engine, err := ingest.NewEngine(opts)
	if err != nil {
		return err
	}
	defer engine.Close()

	disc, err := driver.NewDiscovery(rootDir, cfg.Paths)
	if err != nil {
		return err
	}

	if err := ingestOnce(ctx, engine, disc, rootDir, cfg); err != nil {
		return err
	}
	if !watchFlag {
		return nil
	}

	w, err := watcher.New(rootDir, nil, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	w.Start(ctx, func(paths []string) {
		if !quietFlag {
			log.Printf("%d file(s) changed, re-ingesting", len(paths))
		}
		if err := ingestOnce(ctx, engine, disc, rootDir, cfg); err != nil {
			log.Printf("re-ingest failed: %v", err)
		}
	})

	if !quietFlag {
		log.Printf("Watching %s for changes (Ctrl+C to stop)", rootDir)
	}
	<-ctx.Done()
	return nil
}

func ingestOnce(ctx context.Context, engine *ingest.Engine, disc *driver.Discovery, rootDir string, cfg *config.Config) error {
	paths, err := disc.Discover()
	if err != nil {
		return err
	}
	if !quietFlag {
		log.Printf("Discovered %d source file(s)", len(paths))
	}

	inputs, err := readWithProgress(disc, paths)
	if err != nil {
		return err
	}

	res, runErr := engine.Run(ctx, inputs)
	if res == nil {
		return runErr
	}

	report(res)
	if err := persist(res, rootDir, cfg); err != nil {
		return err
	}
	return runErr
}

func readWithProgress(disc *driver.Discovery, paths []string) ([]ingest.FileInput, error) {
	if quietFlag {
		return disc.ReadAll(paths)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Reading files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	inputs := make([]ingest.FileInput, 0, len(paths))
	for _, p := range paths {
		in, err := disc.ReadAll([]string{p})
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in...)
		bar.Add(1)
	}
	bar.Finish()
	return inputs, nil
}

func report(res *ingest.Result) {
	if quietFlag {
		return
	}
	log.Printf("Indexed %d file(s), %d symbol(s), %d parse failure(s)",
		res.Stats.TotalFiles, res.Stats.TotalSymbols, res.Stats.ParseFailures)

	errs := 0
	for _, d := range res.Diagnostics {
		if d.Severity == symbol.SeverityError {
			errs++
		}
		if verbose {
			log.Printf("  %s", d)
		}
	}
	if len(res.Diagnostics) > 0 && !verbose {
		log.Printf("%d diagnostic(s) (%d error-level); rerun with -v to list them", len(res.Diagnostics), errs)
	}
}

func persist(res *ingest.Result, rootDir string, cfg *config.Config) error {
	doc := &export.Document{
		RunID:       res.RunID,
		Index:       res.Index,
		Diagnostics: res.Diagnostics,
		Stats:       res.Stats,
	}

	if cfg.Output.DBPath != "" {
		dbPath := filepath.Join(rootDir, cfg.Output.DBPath)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(doc); err != nil {
			return err
		}
		if !quietFlag {
			log.Printf("Index saved to %s", dbPath)
		}
	}

	if cfg.Output.JSONPath != "" {
		jsonPath := cfg.Output.JSONPath
		if !filepath.IsAbs(jsonPath) {
			jsonPath = filepath.Join(rootDir, jsonPath)
		}
		if err := export.WriteFile(jsonPath, doc); err != nil {
			return err
		}
		if !quietFlag {
			log.Printf("Index exported to %s", jsonPath)
		}
	}
	return nil
}

func resolveRoot(args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Abs(args[0])
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
