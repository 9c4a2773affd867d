package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/withgalaxy/adapter-static/pkg/build"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

var (
	routesMatch  string
	routesRender bool
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List routes and how they will be exported",
	Long:  `Discover routes and show their disposition. Without --render, routes that need a render are shown as pending.`,
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.Flags().StringVar(&routesMatch, "match", "", "show which route handles a path")
	routesCmd.Flags().BoolVar(&routesRender, "render", false, "render routes to resolve their disposition")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
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

	if routesMatch != "" {
		r, err := builder.Discover(cmd.Context())
		if err != nil {
			return err
		}
		route, params := r.Match(routesMatch)
		if route == nil {
			return fmt.Errorf("no route matches %s", routesMatch)
		}
		fmt.Printf("%s → %s [%s]\n", routesMatch, route.Pattern, route.Type)
		for _, name := range route.ParamNames {
			fmt.Printf("  %s = %s\n", name, params[name])
		}
		return nil
	}

	var r *report.BuildReport
	if routesRender {
		res, err := builder.Check(cmd.Context())
		if res == nil {
			return err
		}
		r = res.Report
	} else {
		r, err = builder.Plan(cmd.Context())
		if err != nil {
			return err
		}
	}

	p := report.NewPrinter(os.Stdout, "")
	p.Routes(r)
	fmt.Println()
	p.Summary(r, 0)
	return nil
}
