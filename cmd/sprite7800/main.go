package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/sprite7800"
	"github.com/bodgit/sprite7800/codegen"
	"github.com/urfave/cli/v2"
)

const defaultDB = "sprite7800.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadOptions(c *cli.Context) (codegen.Options, error) {
	file := c.String("config")
	if file == "" {
		return codegen.DefaultOptions(), nil
	}

	f, err := os.Open(file)
	if err != nil {
		return codegen.Options{}, err
	}
	defer f.Close()

	return codegen.LoadOptions(f)
}

func openWorkspace(c *cli.Context) (*sprite7800.Workspace, error) {
	opts, err := loadOptions(c)
	if err != nil {
		return nil, err
	}

	w, err := sprite7800.New(c.String("db"), newLogger(c))
	if err != nil {
		return nil, err
	}
	w.SetOptions(opts)

	return w, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "sprite7800"
	app.Usage = "Atari 7800 graphics utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITE7800_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalogue database",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"SPRITE7800_CONFIG"},
			Usage:   "path to YAML export options",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		exportCommand,
		previewCommand,
		paletteCommand,
		importCommand,
		scanCommand,
		findCommand,
		watchCommand,
		convertCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
