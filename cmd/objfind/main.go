package main

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/objfind/objfind"
	"github.com/objfind/objfind/match"
	"github.com/urfave/cli/v2"
)

const (
	defaultDB     = "objfind.db"
	defaultReport = "output.txt"
)

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

func loadConfig(c *cli.Context) (match.Config, error) {
	if path := c.String("config"); path != "" {
		return objfind.ReadConfig(path)
	}
	return match.DefaultConfig(), nil
}

func main() {
	app := cli.NewApp()

	app.Name = "objfind"
	app.Usage = "Locate template bitmaps inside scene bitmaps"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"OBJFIND_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to reference coordinate database",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to search configuration",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "import",
			Usage:       "Import reference coordinates from a CSV file",
			Description: "Each record is id,x,y in scene coordinates.",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := objfind.NewRefDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				if err := db.ImportCSV(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "match",
			Usage:       "Search one scene bitmap for one template bitmap",
			Description: "Writes the candidate report to standard output.",
			ArgsUsage:   "SCENE TEMPLATE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "id",
					Value: -1,
					Usage: "reference coordinate id to score against",
				},
				&cli.StringFlag{
					Name:  "annotate",
					Usage: "write an annotated copy of the scene to this path",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				config, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				db, err := objfind.NewRefDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				o := objfind.New(db, config, newLogger(c))

				res, err := o.Match(c.Args().Get(0), c.Args().Get(1), c.Int("id"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				report := objfind.NewReport(os.Stdout)
				if err := report.Write(filepath.Base(c.Args().Get(0)), res); err != nil {
					return cli.NewExitError(err, 1)
				}

				if out := c.String("annotate"); out != "" {
					if err := o.Annotate(c.Args().Get(0), out, res); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Match every numbered scene/template pair in a directory",
			Description: "Pairs testNNN.bmp with objNNN.bmp and appends a report block per pair.",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "report",
					Value: defaultReport,
					Usage: "path to the report file",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of concurrent matchers",
				},
				&cli.BoolFlag{
					Name:  "annotate",
					Usage: "write annotated scene copies next to the originals",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				config, err := loadConfig(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				db, err := objfind.NewRefDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				f, err := os.OpenFile(c.String("report"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				o := objfind.New(db, config, newLogger(c))

				if err := o.Scan(c.Args().First(), c.Int("workers"), objfind.NewReport(f), c.Bool("annotate")); err != nil {
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
