package main

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/bodgit/qoiview"
	"github.com/bodgit/qoiview/catalog"
	"github.com/bodgit/qoiview/config"
	"github.com/bodgit/qoiview/metrics"
	"github.com/bodgit/qoiview/palette"
	"github.com/bodgit/qoiview/qoi"
	"github.com/bodgit/qoiview/store"
	"github.com/urfave/cli/v2"
)

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

// loadConfig reads the optional config file and applies any flags set on
// the command line over it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitError maps unrecoverable conditions to exit status 2.
func exitError(err error) error {
	if qoi.IsFatal(err) || catalog.IsFatal(err) {
		return cli.NewExitError(err, 2)
	}
	return cli.NewExitError(err, 1)
}

func openViewer(c *cli.Context, opts ...qoiview.Option) (*qoiview.Viewer, store.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(c.Args().First())
	if err != nil {
		return nil, nil, err
	}

	mode := qoiview.DisplayMode{Width: cfg.Width, Height: cfg.Height}
	v, err := qoiview.New(s, mode, newLogger(c), opts...)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return v, s, nil
}

func decodeOne(c *cli.Context) (*qoi.Result, []byte, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(c.Args().Get(0))
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	logger := newLogger(c)
	buf := make([]byte, cfg.BufferSize())
	res, err := qoi.NewDecoder(s, logger).Decode(c.Args().Get(1), buf)
	if err != nil {
		return nil, nil, err
	}

	logger.Printf("First pixel of %s: %d %d %d %d\n", res.Name, buf[0], buf[1], buf[2], buf[3])

	return &res, buf[:res.Width*res.Height*qoi.BytesPerPixel], nil
}

func frameImage(res *qoi.Result, pix []byte) *image.NRGBA {
	return &image.NRGBA{
		Pix:    pix,
		Stride: res.Width * qoi.BytesPerPixel,
		Rect:   image.Rect(0, 0, res.Width, res.Height),
	}
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, m)
}

func list(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	s, err := store.Open(c.Args().First())
	if err != nil {
		return exitError(err)
	}
	defer s.Close()

	it, err := s.Entries()
	if err != nil {
		return exitError(err)
	}
	cat, err := catalog.Build(it)
	if err != nil {
		return exitError(err)
	}

	cur := cat.First()
	for i := 0; i < cat.Len(); i++ {
		fmt.Printf("%3d %2d %s\n", cur.Chunk(), cur.Index(), cat.Name(cur))
		cur = cat.Next(cur)
	}

	return nil
}

func decode(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	res, pix, err := decodeOne(c)
	if err != nil {
		return exitError(err)
	}

	fmt.Printf("%s: %dx%d, %d channels, decoded in %.3f ms\n", res.Name, res.Width, res.Height, res.Channels, res.Elapsed.Seconds()*1000)

	if file := c.String("png"); file != "" {
		if err := writePNG(file, frameImage(res, pix)); err != nil {
			return exitError(err)
		}
	}

	return nil
}

func inspect(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return exitError(err)
	}
	n := cfg.Colors
	if c.IsSet("colors") {
		n = c.Int("colors")
	}

	res, pix, err := decodeOne(c)
	if err != nil {
		return exitError(err)
	}

	m := frameImage(res, pix)
	p := palette.Dominant(m, n)

	fmt.Printf("%s: %dx%d, %d channels\n", res.Name, res.Width, res.Height, res.Channels)
	fmt.Printf("first pixel: %s\n", palette.Hex(m.At(0, 0)))
	fmt.Printf("palette: %s\n", palette.Format(p))

	if file := c.String("preview"); file != "" {
		if err := writePNG(file, palette.Reduce(m, n)); err != nil {
			return exitError(err)
		}
	}

	return nil
}

func browse(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	v, s, err := openViewer(c)
	if err != nil {
		return exitError(err)
	}
	defer s.Close()

	status := func() {
		if text := v.Overlay(); text != "" {
			fmt.Println(text)
			return
		}
		fmt.Println(v.Current())
	}
	status()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "n", "next", "":
			err = v.Next()
		case "p", "prev", "previous":
			err = v.Previous()
		case "d", "debug":
			v.ToggleOverlay()
		case "w", "write":
			err = writePNG(v.Info().Name+".png", v.Image())
		case "q", "quit":
			return nil
		default:
			fmt.Println("commands: n(ext) p(revious) d(ebug) w(rite) q(uit)")
			continue
		}
		if err != nil {
			if qoi.IsFatal(err) {
				return exitError(err)
			}
			fmt.Fprintln(os.Stderr, err)
		}
		status()
	}

	return scanner.Err()
}

func bench(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	r := metrics.New()
	v, s, err := openViewer(c, qoiview.WithMetrics(r))
	if err != nil {
		return exitError(err)
	}
	defer s.Close()

	// The first image was decoded when the viewer was created
	total := c.Int("rounds")*v.Catalog().Len() - 1
	for i := 0; i < total; i++ {
		if err := v.Next(); err != nil {
			if qoi.IsFatal(err) {
				return exitError(err)
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}

	sum, err := r.Summary()
	if err != nil {
		return exitError(err)
	}

	statuses := make([]string, 0, len(sum.Decodes))
	for k := range sum.Decodes {
		statuses = append(statuses, k)
	}
	sort.Strings(statuses)
	for _, k := range statuses {
		fmt.Printf("%-20s %d\n", k, sum.Decodes[k])
	}
	fmt.Printf("mean decode time     %.3f ms\n", sum.Mean.Seconds()*1000)

	bounds := make([]float64, 0, len(sum.Buckets))
	for b := range sum.Buckets {
		bounds = append(bounds, b)
	}
	sort.Float64s(bounds)
	for _, b := range bounds {
		fmt.Printf("<= %8.2f ms %8d\n", b*1000, sum.Buckets[b])
	}

	return nil
}

func pack(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return exitError(err)
	}

	name := cfg.Codec
	if c.IsSet("codec") {
		name = c.String("codec")
	}
	codec, err := store.ParseCodec(name)
	if err != nil {
		return exitError(err)
	}

	workers := cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	n, err := store.BuildPack(context.Background(), c.Args().Get(0), c.Args().Get(1), codec, workers, newLogger(c))
	if err != nil {
		return exitError(err)
	}

	fmt.Printf("packed %d images\n", n)

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "qoiview"
	app.Usage = "QOI image store viewer"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"QOIVIEW_CONFIG"},
			Usage:   "path to YAML config file",
		},
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"QOIVIEW_WIDTH"},
			Value:   config.DefaultWidth,
			Usage:   "display width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"QOIVIEW_HEIGHT"},
			Value:   config.DefaultHeight,
			Usage:   "display height in pixels",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "list",
			Usage:     "List the catalog of a directory or pack",
			ArgsUsage: "SOURCE",
			Action:    list,
		},
		{
			Name:      "decode",
			Usage:     "Decode a single image",
			ArgsUsage: "SOURCE NAME",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "png",
					Usage: "write the decoded image to `FILE` as PNG",
				},
			},
			Action: decode,
		},
		{
			Name:      "inspect",
			Usage:     "Decode a single image and summarise its colors",
			ArgsUsage: "SOURCE NAME",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: config.DefaultColors,
					Usage: "number of palette colors",
				},
				&cli.StringFlag{
					Name:  "preview",
					Usage: "write the reduced image to `FILE` as PNG",
				},
			},
			Action: inspect,
		},
		{
			Name:      "browse",
			Usage:     "Step through images interactively",
			ArgsUsage: "SOURCE",
			Action:    browse,
		},
		{
			Name:      "bench",
			Usage:     "Decode every image and report timings",
			ArgsUsage: "SOURCE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "rounds",
					Value: 1,
					Usage: "number of passes over the catalog",
				},
			},
			Action: bench,
		},
		{
			Name:      "pack",
			Usage:     "Build a pack file from a directory of images",
			ArgsUsage: "DIRECTORY FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "codec",
					Value: config.DefaultCodec,
					Usage: "blob compression, one of none, zstd or lz4",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: config.DefaultWorkers,
					Usage: "number of compression workers",
				},
			},
			Action: pack,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
