package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bodgit/sprite7800"
	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/codegen"
	"github.com/bodgit/sprite7800/palette"
	"github.com/bodgit/sprite7800/preview"
	"github.com/bodgit/sprite7800/snapshot"
	"github.com/urfave/cli/v2"
)

var exportCommand = &cli.Command{
	Name:        "export",
	Usage:       "Generate assembly source from project files",
	Description: "Writes one .asm file next to each project, or one per display mode when a project uses more than one.",
	ArgsUsage:   "FILE...",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		w, err := openWorkspace(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer w.Close()

		for _, file := range c.Args().Slice() {
			files, err := w.Export(file)
			if err != nil {
				return cli.Exit(err, 1)
			}
			for _, f := range files {
				fmt.Fprintln(c.App.Writer, f)
			}
		}

		return nil
	},
}

func spec(c *cli.Context, s *snapshot.Snapshot) *palette.Spec {
	if tv := c.String("tv"); tv != "" {
		return palette.SpecByName(strings.ToUpper(tv))
	}
	if s != nil {
		return palette.SpecByName(s.Television)
	}
	return palette.NTSC
}

var tvFlag = &cli.StringFlag{
	Name:  "tv",
	Usage: "television standard, NTSC or PAL",
}

var previewCommand = &cli.Command{
	Name:      "preview",
	Usage:     "Render every object of a project as PNG",
	ArgsUsage: "FILE DIRECTORY",
	Flags: []cli.Flag{
		tvFlag,
		&cli.IntFlag{
			Name:  "thumbnail",
			Usage: "scale each image to fit within this many pixels",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		s, err := snapshot.Load(c.Args().Get(0))
		if err != nil {
			return cli.Exit(err, 1)
		}

		p, err := sprite7800.OpenProject(s, canvas.DefaultConfig())
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer p.Close()

		dir := c.Args().Get(1)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cli.Exit(err, 1)
		}

		tv := spec(c, s)
		seen := make(map[string]int)
		if err := p.Walk(func(path []string, cv *canvas.Canvas) error {
			m, err := preview.Image(preview.FromCanvas(cv), tv)
			if err != nil {
				return err
			}

			name := codegen.Sanitize(strings.Join(append(path, cv.Name()), "_"))
			if n := seen[name]; n > 0 {
				seen[name]++
				name = fmt.Sprintf("%s_%d", name, n)
			} else {
				seen[name] = 1
			}

			f, err := os.Create(filepath.Join(dir, name+".png"))
			if err != nil {
				return err
			}
			defer f.Close()

			if size := c.Int("thumbnail"); size > 0 {
				return preview.Encode(f, preview.Thumbnail(m, size))
			}
			return preview.Encode(f, m)
		}); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	},
}

var paletteCommand = &cli.Command{
	Name:      "palette",
	Usage:     "Suggest palette colors from a reference image",
	ArgsUsage: "IMAGE",
	Flags: []cli.Flag{
		tvFlag,
		&cli.IntFlag{
			Name:  "colors",
			Value: palette.SlotsPerPalette,
			Usage: "number of colors to suggest",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		f, err := os.Open(c.Args().First())
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer f.Close()

		m, err := preview.Decode(f)
		if err != nil {
			return cli.Exit(err, 1)
		}

		for _, color := range palette.Suggest(m, c.Int("colors"), spec(c, nil)) {
			fmt.Fprintln(c.App.Writer, color)
		}

		return nil
	},
}

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "Add project files to the catalogue",
	ArgsUsage: "FILE...",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		w, err := openWorkspace(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer w.Close()

		for _, file := range c.Args().Slice() {
			if err := w.Import(file); err != nil {
				return cli.Exit(err, 1)
			}
		}

		return nil
	},
}

var exportFlag = &cli.BoolFlag{
	Name:  "export",
	Usage: "also write assembly source next to each project file",
}

var scanCommand = &cli.Command{
	Name:      "scan",
	Usage:     "Scan filesystem and catalogue project files",
	ArgsUsage: "DIRECTORY",
	Flags:     []cli.Flag{exportFlag},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		w, err := openWorkspace(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer w.Close()
		w.SetExport(c.Bool("export"))

		if err := w.Scan(c.Args().First()); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	},
}

var findCommand = &cli.Command{
	Name:  "find",
	Usage: "Search the catalogue",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "digest",
			Usage: "find objects with identical pixels",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "find objects using a display mode",
		},
		&cli.BoolFlag{
			Name:  "duplicates",
			Usage: "list every set of objects with identical pixels",
		},
	},
	Action: func(c *cli.Context) error {
		w, err := openWorkspace(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer w.Close()

		var entries []sprite7800.Entry
		switch {
		case c.Bool("duplicates"):
			groups, err := w.Catalog().Duplicates()
			if err != nil {
				return cli.Exit(err, 1)
			}
			for i, g := range groups {
				if i > 0 {
					fmt.Fprintln(c.App.Writer)
				}
				for _, e := range g {
					fmt.Fprintln(c.App.Writer, e)
				}
			}
			return nil
		case c.IsSet("digest"):
			entries, err = w.Catalog().FindObjectsByDigest(c.String("digest"))
		case c.IsSet("mode"):
			entries, err = w.Catalog().FindObjectsByMode(c.String("mode"))
		default:
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}
		if err != nil {
			return cli.Exit(err, 1)
		}

		for _, e := range entries {
			fmt.Fprintln(c.App.Writer, e)
		}

		return nil
	},
}

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "Catalogue and export project files as they are saved",
	ArgsUsage: "DIRECTORY",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "export",
			Value: true,
			Usage: "write assembly source next to each project file",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		w, err := openWorkspace(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer w.Close()
		w.SetExport(c.Bool("export"))

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()

		if err := w.Watch(ctx, c.Args().First()); err != nil && err != context.Canceled {
			return cli.Exit(err, 1)
		}

		return nil
	},
}

var convertCommand = &cli.Command{
	Name:        "convert",
	Usage:       "Convert a project file between JSON and compressed form",
	Description: "The form is chosen from the extension of OUTPUT unless --compress is given.",
	ArgsUsage:   "INPUT OUTPUT",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "write the compressed form",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 2 {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}

		s, err := snapshot.Load(c.Args().Get(0))
		if err != nil {
			return cli.Exit(err, 1)
		}

		out := c.Args().Get(1)
		compressed := strings.EqualFold(filepath.Ext(out), snapshot.Extension)
		if c.IsSet("compress") {
			compressed = c.Bool("compress")
		}

		if err := snapshot.Save(out, s, compressed); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	},
}
