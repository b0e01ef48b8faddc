package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scribe/internal"
	pkgconfig "github.com/starford/scribe/pkg/config"
)

var version = "dev"

type runner func(ctx context.Context, opts ...internal.Option) error

// loadOptions reads the config file (defaults when absent) and applies the
// --profile override.
func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if profile := cmd.String("profile"); profile != "" {
		cfg.Profile.Path = profile
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func action(run runner) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func writeStyles(_ context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	path, err := internal.WriteStyles(opts...)
	if err != nil {
		return fmt.Errorf("write styles: %w", err)
	}
	fmt.Println(path)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "scribe",
		Usage:   "Debounced Markdown notes pad with live preview for the browser, the terminal and MCP clients",
		Version: version,
		Action:  action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when it does not exist)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "Profile directory holding notes.md (overrides profile.path)",
				Sources: cli.EnvVars("SCRIBE_PROFILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the REST API, the live preview stream and the browser editor",
				Action: action(internal.Run),
			},
			{
				Name:   "tui",
				Usage:  "Edit the notes in the terminal",
				Action: action(internal.RunTUI),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the notes to an MCP client over stdio",
				Action: action(internal.RunMCP),
			},
			{
				Name:   "styles",
				Usage:  "Write the default markdown_style.json into the profile",
				Action: writeStyles,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
