package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/withgalaxy/adapter-static/pkg/build"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every route can be exported",
	Long:  `Preprocess, classify and render every route and run the strict gate without writing anything`,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkStrict, "strict", true, "fail when a route can only be served by the fallback")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Adapter.Strict = checkStrict
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
		fmt.Println("🔍 Checking routes...")
		fmt.Println()
	}

	res, err := builder.Check(cmd.Context())
	if res != nil && !silent {
		p := report.NewPrinter(os.Stdout, "")
		p.Routes(res.Report)
		fmt.Println()
		p.Summary(res.Report, res.Duration)
		fmt.Println()
	}
	if err != nil {
		return err
	}

	if !silent {
		if n := len(res.Report.Warnings); n > 0 {
			fmt.Printf("⚠️  Found %d warning(s)\n", n)
		} else {
			fmt.Printf("✅ No errors found\n")
		}
	}
	return nil
}
