package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/withgalaxy/adapter-static/pkg/build"
	"github.com/withgalaxy/adapter-static/pkg/report"
	"github.com/withgalaxy/adapter-static/pkg/strict"
)

var (
	buildOutDir      string
	buildStrict      bool
	buildPrecompress bool
	buildConcurrency int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the static site",
	Long:  `Prerender every route, write the fallback page and publish the output tree`,
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildOutDir, "outDir", "", "output directory (overrides adapter.pages)")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", true, "fail when a route can only be served by the fallback")
	buildCmd.Flags().BoolVar(&buildPrecompress, "precompress", false, "write .gz and .br variants")
	buildCmd.Flags().IntVar(&buildConcurrency, "concurrency", 0, "maximum concurrent renders")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}

	if buildOutDir != "" {
		cfg.Adapter.Pages = buildOutDir
		if !filepath.IsAbs(cfg.Adapter.Pages) {
			cfg.Adapter.Pages = filepath.Join(cwd, cfg.Adapter.Pages)
		}
	}
	if cmd.Flags().Changed("strict") {
		cfg.Adapter.Strict = buildStrict
	}
	if cmd.Flags().Changed("precompress") {
		cfg.Adapter.Precompress = buildPrecompress
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Prerender.Concurrency = buildConcurrency
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	builder, err := build.New(cfg, build.Options{Logger: logger})
	if err != nil {
		return err
	}

	if !silent {
		mode := "strict"
		if !cfg.Adapter.Strict {
			mode = "non-strict"
		}
		fmt.Printf("🔨 Building static site (%s)...\n", mode)
		if verbose {
			fmt.Printf("📁 Routes: %s\n", cfg.RoutesPath())
			fmt.Printf("📤 Output: %s\n", cfg.Adapter.Pages)
			fmt.Printf("🧭 Fallback: %s\n", cfg.Adapter.Fallback)
		}
		fmt.Println()
	}

	res, err := builder.Build(cmd.Context())

	printer := report.NewPrinter(os.Stdout, relTo(cwd, cfg.Adapter.Pages))
	if res != nil && !silent {
		printer.Routes(res.Report)
		fmt.Println()
	}

	if err != nil {
		var sv *strict.StrictViolation
		if errors.As(err, &sv) && res != nil && !silent {
			printer.OutputDir = ""
			printer.Summary(res.Report, res.Duration)
			fmt.Println()
		}
		return fmt.Errorf("build failed: %w", err)
	}

	if !silent {
		printer.Summary(res.Report, res.Duration)
		if lines := builder.Adapter().Instructions(); len(lines) > 0 {
			fmt.Printf("\n✅ %s adapter complete\n", builder.Adapter().Name())
			for _, l := range lines {
				fmt.Println(l)
			}
		}
	}

	return nil
}
