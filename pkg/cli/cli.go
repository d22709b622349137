// Package cli provides the command-line interface for pagekit.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/driver/appium"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/page"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Appium server URL",
		Value:   "http://127.0.0.1:4723",
		EnvVars: []string{"PAGEKIT_SERVER"},
	},
	&cli.StringFlag{
		Name:    "caps",
		Usage:   "Path to capabilities YAML file",
		EnvVars: []string{"PAGEKIT_CAPS"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to pagekit.yaml (default: search current directory)",
		EnvVars: []string{"PAGEKIT_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log",
		Usage:   "Log file path",
		EnvVars: []string{"PAGEKIT_LOG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"PAGEKIT_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "pagekit",
		Usage:   "Element wait and gesture toolkit for Appium sessions",
		Version: Version,
		Description: `Pagekit resolves UI elements into target states and performs
swipe-into-view gestures against a running Appium server.

Examples:
  pagekit --caps caps.yaml wait visible --by "accessibility id" --value Login
  pagekit --caps caps.yaml swipe --by xpath --value "//List" --toward up
  pagekit --caps caps.yaml status --by id --value submit`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			waitCommand,
			swipeCommand,
			statusCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup initializes logging, loads configuration, connects an Appium session
// and returns a page bound to it plus a disconnect func.
func setup(c *cli.Context) (*page.Page, func(), error) {
	if path := c.String("log"); path != "" {
		if err := logger.Init(path); err != nil {
			return nil, nil, err
		}
	} else {
		logger.InitWriter(os.Stderr)
	}
	logger.SetVerbose(c.Bool("verbose"))

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	caps, err := loadCaps(c.String("caps"))
	if err != nil {
		return nil, nil, err
	}

	client := appium.NewClient(c.String("server"))
	if err := client.Connect(caps); err != nil {
		return nil, nil, err
	}
	logger.Info("[session] connected: %s (%s)", client.SessionID(), client.Platform())

	cleanup := func() {
		if err := client.Disconnect(); err != nil {
			logger.Warn("[session] disconnect: %v", err)
		}
		logger.Close()
	}
	return page.New(client, cfg), cleanup, nil
}
