package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/warrantdesk/internal"
	pkgconfig "github.com/starford/warrantdesk/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	files, err := internal.Render(ctx, internal.RenderOptions{
		Input:      cmd.String("input"),
		OutDir:     cmd.String("out"),
		Individual: cmd.Bool("individual"),
	}, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs go to stderr.
	if err := internal.ServeMCP(ctx, cmd.String("input"), cmd.String("out"),
		internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Workbook (.xlsx) to load",
		Required: true,
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Directory for generated files",
		Value:   ".",
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "warrantdesk",
		Usage:  "Review arrest-warrant spreadsheets, annotate records and export PDF reports",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when missing)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP review service",
				Action: serve,
			},
			{
				Name:   "render",
				Usage:  "Render the consolidated report (and optionally every individual report) to disk",
				Action: render,
				Flags: []cli.Flag{
					inputFlag(),
					outFlag(),
					&cli.BoolFlag{
						Name:  "individual",
						Usage: "Also write one report per record",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio for a loaded workbook",
				Action: serveMCP,
				Flags:  []cli.Flag{inputFlag(), outFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
