package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/psxtim"
	"github.com/bodgit/psxtim/render"
	"github.com/bodgit/psxtim/tim"
	"github.com/urfave/cli/v2"
)

const defaultDB = "psxtim.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newLibrary(c *cli.Context) (*psxtim.Library, *psxtim.ImageDB, error) {
	db, err := psxtim.NewImageDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}
	return psxtim.New(db, newLogger(c)), db, nil
}

func parseFile(file string, dp bool) (tim.Image, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var p tim.Parser = tim.TIMParser{}
	if dp || strings.ToLower(filepath.Ext(file)) == ".dp" {
		p = tim.DPParser{}
	}

	return p.Parse(b)
}

func printClut(i int, clut tim.ClutInfo) {
	fmt.Printf("CLUT %d:\t%d entries at (%d, %d), %dx%d\n", i, len(clut.Entries), clut.X, clut.Y, clut.Width, clut.Height)
	for j, e := range clut.Entries {
		if j > 0 && j%8 == 0 {
			fmt.Println()
		}
		fmt.Printf(" %s", e.Hex())
	}
	fmt.Println()
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	m, err := parseFile(c.Args().First(), c.Bool("dp"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if t, ok := m.(*tim.TIM); ok {
		fmt.Printf("Version:\t%d\n", t.Header.Version)
		fmt.Printf("Pixel mode:\t%s\n", t.Flags.PixelMode)
		fmt.Printf("CLUT:\t\t%t\n", t.Flags.CLUT)
	}

	p := m.PixelData()
	fmt.Printf("Pixels:\t\t%d samples at (%d, %d), %dx%d\n", p.Len(), p.X, p.Y, p.Width, p.Height)

	for i, clut := range m.Palettes() {
		printClut(i, clut)
	}

	return nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	m, err := parseFile(c.Args().Get(0), c.Bool("dp"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	r, err := render.New(m)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	surface, err := render.Image(r, c.Int("palette"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	f, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	if err := render.Write(f, render.Scale(surface, c.Int("scale")), c.String("format")); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

var modes = map[string]tim.PixelMode{
	"clut4":    tim.CLUT4,
	"clut8":    tim.CLUT8,
	"direct24": tim.Direct24,
}

func encode(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	mode, ok := modes[c.String("mode")]
	if !ok {
		return cli.NewExitError(fmt.Sprintf("unknown mode %q", c.String("mode")), 1)
	}

	in, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer in.Close()

	m, _, err := image.Decode(in)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	out, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer out.Close()

	if err := tim.Encode(out, m, mode); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "psxtim"
	app.Usage = "PlayStation TIM image utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	dpFlag := &cli.BoolFlag{
		Name:  "dp",
		Usage: "treat the file as a DP image",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PSXTIM_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Describe a TIM or DP image",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{dpFlag},
			Action:    info,
		},
		{
			Name:      "convert",
			Usage:     "Render a TIM or DP image to PNG or BMP",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				dpFlag,
				&cli.IntFlag{
					Name:  "palette",
					Usage: "palette to render with",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 2,
					Usage: "integer scale factor",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: render.PNG,
					Usage: "output format, png or bmp",
				},
			},
			Action: convert,
		},
		{
			Name:      "encode",
			Usage:     "Convert a PNG, GIF or JPEG image to TIM",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Value: "clut8",
					Usage: "pixel mode, clut4, clut8 or direct24",
				},
			},
			Action: encode,
		},
		{
			Name:      "extract",
			Usage:     "Extract TIM images from a binary or disc image",
			ArgsUsage: "FILE DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, db, err := newLibrary(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				found, err := l.Extract(c.Args().Get(0), c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Printf("Extracted %d images\n", len(found))

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan filesystem and catalogue images",
			ArgsUsage: "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of files to process at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, db, err := newLibrary(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				if err := l.Scan(c.Args().First(), c.Int("workers")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List catalogued images",
			Action: func(c *cli.Context) error {
				db, err := psxtim.NewImageDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				entries, err := db.List()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, e := range entries {
					fmt.Printf("%s %s %s %dx%d\n", e.Hash, e.Kind, e.Mode, e.Width, e.Height)
					for _, s := range e.Sources {
						fmt.Printf("\t%s@%d %s\n", s.Path, s.Position, s.CRC)
					}
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Write the PNG rendering of a catalogued image",
			ArgsUsage: "HASH OUTPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := psxtim.NewImageDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				if err := db.Export(strings.ToUpper(c.Args().First()), f); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
