package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/hellstation/cookierinse"
)

var version = "dev"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cookierinse: %s\n", err.Error())
		os.Exit(1)
	}
}

var catalogPath string

func run(args []string) error {
	app := cli.App{
		Name:      "cookierinse",
		HelpName:  "cookierinse",
		Usage:     "clean and profile browser cookie exports",
		UsageText: "cookierinse <command> [arguments...]",
		Version:   version,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "catalog, c",
				Usage:       "path to a catalog YAML (defaults to the embedded catalog)",
				EnvVar:      "COOKIERINSE_CATALOG",
				Destination: &catalogPath,
			},
		},
		Commands: []cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "profile a cookies.txt file without writing anything",
				UsageText: "cookierinse analyze <cookies-file>",
				Action:    analyze,
			},
			{
				Name:      "clean",
				Aliases:   []string{"cl"},
				Usage:     "keep only auth cookies and report the profile",
				UsageText: "cookierinse clean <cookies-file> [-o output]",
				Action:    clean,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "output, o",
						Usage: "cleaned file path (default: <input>.cleaned)",
					},
				},
			},
			{
				Name:      "export",
				Aliases:   []string{"e"},
				Usage:     "export a local browser cookie store to cookies.txt",
				UsageText: "cookierinse export --browser chrome [-p profile] [-o output]",
				Action:    export,
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "browser, b",
						Usage: "chrome, chromium, edge, brave, vivaldi, opera or firefox",
						Value: "chrome",
					},
					cli.StringFlag{
						Name:  "profile, p",
						Usage: "profile name, profile directory or cookie DB path",
					},
					cli.StringFlag{
						Name:  "output, o",
						Usage: "output file (default: cookies.txt)",
						Value: "cookies.txt",
					},
					cli.BoolFlag{
						Name:  "include-expired",
						Usage: "keep cookies whose expiry is in the past",
					},
				},
			},
		},
	}
	return app.Run(args)
}

func newEngine() (*cookierinse.Engine, error) {
	if catalogPath == "" {
		return cookierinse.NewEngine(nil), nil
	}
	catalog, err := cookierinse.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return cookierinse.NewEngine(catalog), nil
}
