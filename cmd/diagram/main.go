package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"visionlab/internal/config"
	"visionlab/internal/optics"
	"visionlab/internal/render"
	"visionlab/internal/render/pdf"
	"visionlab/internal/render/raster"
	"visionlab/internal/view"
)

var errTerminal = errors.New("refusing to write a binary diagram to a terminal; use -o or redirect stdout")

func main() {
	fs := flag.NewFlagSet("diagram", flag.ExitOnError)
	scene := config.RegisterSceneFlags(fs)
	out := fs.String("o", "-", "output file, - for stdout")
	format := fs.String("format", "", "png or pdf (default: from the output extension, else png)")
	canvas := fs.String("canvas", "both", "overview, detail or both (png draws them stacked)")
	width := fs.Int("w", 900, "canvas width in pixels")
	height := fs.Int("h", 360, "canvas height in pixels")
	objectPath := fs.String("object", "", "png/jpeg/gif picture drawn as the object")
	constantsPath := fs.String("constants", config.GetEnv(config.EnvConstants, ""), "optical constants YAML file")
	_ = fs.Parse(os.Args[1:])

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "diagram"})
	if err := run(*out, *format, *canvas, *width, *height, *objectPath, *constantsPath, scene.Config()); err != nil {
		logger.Fatal("diagram", "err", err)
	}
}

func run(out, format, canvas string, width, height int, objectPath, constantsPath string, cfg optics.SceneConfig) (err error) {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: canvas is %dx%d", render.ErrMissingPrerequisite, width, height)
	}
	format = strings.ToLower(format)
	if format == "" {
		format = "png"
		if strings.EqualFold(filepath.Ext(out), ".pdf") {
			format = "pdf"
		}
	}
	if format != "png" && format != "pdf" {
		return fmt.Errorf("unknown format %q", format)
	}
	var canvases []string
	switch canvas {
	case "overview", "detail":
		canvases = []string{canvas}
	case "both":
		canvases = []string{"overview", "detail"}
	default:
		return fmt.Errorf("unknown canvas %q", canvas)
	}

	constants, err := config.LoadConstants(constantsPath)
	if err != nil {
		return err
	}
	s, err := optics.Build(cfg, constants)
	if err != nil {
		return err
	}
	var object image.Image
	if objectPath != "" {
		f, err := os.Open(objectPath)
		if err != nil {
			return err
		}
		img, err := raster.DecodeObject(f, raster.MaxObjectSide)
		f.Close()
		if err != nil {
			return fmt.Errorf("object %s: %w", objectPath, err)
		}
		object = img
	}

	w, closeOut, err := openOutput(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	}()

	tr := view.DefaultTransform()
	views := map[string]struct {
		state view.ViewState
		title string
	}{
		"overview": {tr.AutoFit(view.OverviewExtents(s), float64(width), float64(height)), "Overview"},
		"detail":   {tr.AutoFit(view.DetailExtents(s), float64(width), float64(height)), "Detail: eye"},
	}

	if format == "pdf" {
		doc := pdf.New(width, height)
		for i, name := range canvases {
			if i > 0 {
				doc.NextPage()
			}
			v := views[name]
			if _, err := render.Render(s, tr, v.state, doc, render.Options{Title: v.title, ObjectImage: object}); err != nil {
				return err
			}
		}
		return doc.Write(w)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height*len(canvases)))
	for i, name := range canvases {
		sub := img.SubImage(image.Rect(0, i*height, width, (i+1)*height)).(*image.RGBA)
		c := raster.FromImage(rebase(sub))
		v := views[name]
		if _, err := render.Render(s, tr, v.state, c, render.Options{Title: v.title, ObjectImage: object}); err != nil {
			return err
		}
	}
	return raster.FromImage(img).EncodePNG(w)
}

// rebase gives a sub-image origin (0, 0) while sharing its pixels.
func rebase(sub *image.RGBA) *image.RGBA {
	return &image.RGBA{Pix: sub.Pix, Stride: sub.Stride, Rect: image.Rect(0, 0, sub.Rect.Dx(), sub.Rect.Dy())}
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errTerminal
		}
		bw := bufio.NewWriter(os.Stdout)
		return bw, bw.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(f)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}, nil
}
