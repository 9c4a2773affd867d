package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/withgalaxy/adapter-static/pkg/config"
)

var (
	initYes   bool
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create " + config.TOMLFile,
	Long:  `Ask for the adapter options and write them to ` + config.TOMLFile,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept the defaults without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

const fallbackHelp = `Name of the page served for routes that are not prerendered.
"index.html" only works when "/" is not prerendered; otherwise it
collides with the home page and the build fails. Use "200.html".`

var platformOptions = []string{"none", "netlify", "cloudflare", "vercel"}

type initAnswers struct {
	Fallback    string
	Precompress bool
	Strict      bool
	Platform    string
}

// initFile is the subset of the config written by init.
type initFile struct {
	Adapter   config.AdapterConfig   `toml:"adapter"`
	Prerender config.PrerenderConfig `toml:"prerender"`
}

func defaultAnswers() initAnswers {
	return initAnswers{Fallback: "200.html", Strict: true, Platform: "none"}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := projectRoot()
	if err != nil {
		return err
	}

	configPath := filepath.Join(cwd, config.TOMLFile)
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.TOMLFile)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	answers := defaultAnswers()
	if !initYes {
		questions := []*survey.Question{
			{
				Name:     "fallback",
				Prompt:   &survey.Input{Message: "Fallback page:", Default: answers.Fallback, Help: fallbackHelp},
				Validate: survey.Required,
			},
			{
				Name:   "precompress",
				Prompt: &survey.Confirm{Message: "Precompress files (gzip and brotli)?", Default: answers.Precompress},
			},
			{
				Name:   "strict",
				Prompt: &survey.Confirm{Message: "Fail the build when a route needs the fallback?", Default: answers.Strict},
			},
			{
				Name:   "platform",
				Prompt: &survey.Select{Message: "Hosting platform:", Options: platformOptions, Default: answers.Platform},
			},
		}
		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}
	}

	data, err := renderConfig(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("  ✓ Wrote %s\n", config.TOMLFile)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Put pages in src/routes")
	fmt.Println("  2. Run: adapter-static build")
	return nil
}

func renderConfig(a initAnswers) ([]byte, error) {
	cfg := config.DefaultConfig()
	cfg.Adapter.Fallback = a.Fallback
	cfg.Adapter.Precompress = a.Precompress
	cfg.Adapter.Strict = a.Strict
	if a.Platform != "none" {
		cfg.Adapter.Platform = config.PlatformName(a.Platform)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(initFile{Adapter: cfg.Adapter, Prerender: cfg.Prerender}); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
