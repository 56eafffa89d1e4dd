// Command csrgen generates the companion files of //csr: annotated Go
// declarations.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syssam/csr/compiler/gen"
	"github.com/syssam/csr/compiler/load"
)

var (
	flagConfig  string
	flagVerbose bool
	flagWorkers int
	flagDialect string
	flagHeader  string
	flagTags    []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "csrgen",
	Short:         "Generate services, controllers, codecs, entities and mappers",
	Long:          "csrgen reads //csr: markers on Go declarations and writes one <name>_csr.go file per declaration and one csr_register.go file per package.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", defaultConfigFile, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every written and removed file")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "number of declarations generated in parallel (default: GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&flagDialect, "dialect", "", "default SQL dialect of mappers: postgres|mysql|sqlite|sqlserver")
	rootCmd.PersistentFlags().StringVar(&flagHeader, "header", "", "header comment of generated files")
	rootCmd.PersistentFlags().StringSliceVar(&flagTags, "tags", nil, "comma-separated build tags")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(featuresCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [patterns...]",
	Short: "Generate the files of the matching packages",
	Long:  "Loads the packages matching the patterns (default ./...), writes the files that changed and removes stale generated files.",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, _, err := generate(ctx, cfg)
	if err != nil {
		return err
	}
	printReport(report)
	if n := len(report.Skipped); n > 0 {
		return fmt.Errorf("%d declaration(s) skipped", n)
	}
	return nil
}

// generate runs one pass and returns the directories of the loaded packages.
func generate(ctx context.Context, cfg *config) (*gen.Report, []string, error) {
	opts, err := cfg.options(log.New(os.Stderr, "csrgen: ", 0))
	if err != nil {
		return nil, nil, err
	}
	lc := &load.Config{Dir: cfg.dir, BuildFlags: buildFlags(cfg.Tags)}
	pkgs, err := lc.Packages(cfg.Patterns...)
	if err != nil {
		return nil, nil, err
	}
	report, err := gen.Generate(ctx, pkgs, opts...)
	if err != nil {
		return nil, nil, err
	}
	dirs := make([]string, len(pkgs))
	for i, p := range pkgs {
		dirs[i] = p.Dir
	}
	return report, dirs, nil
}

func printReport(r *gen.Report) {
	fmt.Fprintf(os.Stderr, "csrgen: %d written, %d unchanged, %d removed, %d skipped\n",
		len(r.Written), len(r.Unchanged), len(r.Removed), len(r.Skipped))
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the generator features",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTAGE\tDEFAULT\tDESCRIPTION")
		for _, f := range gen.AllFeatures {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", f.Name, f.Stage, f.Default, f.Description)
		}
		return w.Flush()
	},
}
