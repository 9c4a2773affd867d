package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/withgalaxy/adapter-static/pkg/config"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display environment information",
	Long:  `Display the resolved configuration of the current project`,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cwd, err := projectRoot()
	if err != nil {
		return err
	}

	fmt.Printf("adapter-static           v%s\n", Version)
	fmt.Printf("Go                       %s\n", runtime.Version())
	fmt.Printf("System                   %s (%s)\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Working Directory        %s\n", cwd)

	for _, name := range []string{config.TOMLFile, config.YAMLFile} {
		p := filepath.Join(cwd, name)
		if _, err := os.Stat(p); err == nil {
			fmt.Printf("Config                   %s\n", p)
			break
		}
	}

	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Printf("Config error             %v\n", err)
		return nil
	}

	if info, err := os.Stat(cfg.RoutesPath()); err == nil && info.IsDir() {
		fmt.Printf("Routes                   %s\n", cfg.RoutesPath())
	}
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		fmt.Printf("Static                   %s\n", cfg.StaticDir)
	}

	fmt.Printf("Output                   %s\n", cfg.Adapter.Pages)
	if cfg.SplitAssets() {
		fmt.Printf("Assets                   %s\n", cfg.AssetsDir())
	}
	fmt.Printf("Fallback                 %s\n", cfg.Adapter.Fallback)
	fmt.Printf("Strict                   %v\n", cfg.Adapter.Strict)
	fmt.Printf("Precompress              %v\n", cfg.Adapter.Precompress)
	if cfg.Adapter.Platform != config.PlatformNone {
		fmt.Printf("Platform                 %s\n", cfg.Adapter.Platform)
	}
	fmt.Printf("Publish                  %s\n", cfg.Publish.Target)

	return nil
}
