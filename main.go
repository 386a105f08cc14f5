package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glint-render/glint/pkg/engine"
	"github.com/glint-render/glint/pkg/scene"
	"github.com/glint-render/glint/pkg/sched"
	"github.com/glint-render/glint/pkg/tracer"
	"github.com/glint-render/glint/web/server"
)

func main() {
	root := &cobra.Command{
		Use:   "glint",
		Short: "Progressive path tracer with an interactive viewer",
	}
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRenderCmd() *cobra.Command {
	var (
		width   int
		height  int
		samples int
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo scene offline and save a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(width, height, samples, outDir)
		},
	}
	cmd.Flags().IntVar(&width, "width", 800, "Render width in pixels")
	cmd.Flags().IntVar(&height, "height", 450, "Render height in pixels")
	cmd.Flags().IntVar(&samples, "samples", 50, "Samples per pixel")
	cmd.Flags().StringVar(&outDir, "output", "output", "Output directory")
	return cmd
}

func runRender(width, height, samples int, outDir string) error {
	logger := tracer.NewDefaultLogger()
	logger.Printf("Rendering %dx%d at %d samples per pixel...\n", width, height, samples)

	pools := sched.NewManager()
	defer pools.Shutdown()

	sc := scene.NewDemoScene()
	pt := tracer.NewPathTracer(logger)
	space := scene.NewLinearSpace(sc)

	stage := engine.NewStage(pt, space, pools, samples)
	stage.Prepare()

	sink := &frameSink{}
	started := time.Now()
	stage.Compute(sink, width, height)
	logger.Printf("Render completed in %v\n", time.Since(started))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	filename := filepath.Join(outDir, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, sink.image()); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}

	logger.Printf("Render saved as %s\n", filename)
	return nil
}

// frameSink captures the stage's blit for offline encoding
type frameSink struct {
	pixels []float32
	width  int
	height int
}

func (f *frameSink) BlitRGBFloat(pixels []float32, width, height int) {
	f.pixels = append(f.pixels[:0], pixels...)
	f.width = width
	f.height = height
}

func (f *frameSink) image() image.Image {
	const gamma = 2.0
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			i := (y*f.width + x) * 3
			img.SetRGBA(x, y, color.RGBA{
				R: toDisplayByte(f.pixels[i+0], gamma),
				G: toDisplayByte(f.pixels[i+1], gamma),
				B: toDisplayByte(f.pixels[i+2], gamma),
				A: 255,
			})
		}
	}
	return img
}

func toDisplayByte(v float32, gamma float64) uint8 {
	c := float64(v)
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	return uint8(255 * math.Pow(c, 1.0/gamma))
}

func newServeCmd() *cobra.Command {
	cfg := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, tracer.NewDefaultLogger()).Run(ctx)
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Render viewport width")
	cmd.Flags().IntVar(&cfg.Height, "height", cfg.Height, "Render viewport height")
	cmd.Flags().Float64Var(&cfg.UpdateRate, "rate", cfg.UpdateRate, "Snapshot publishes per second")
	cmd.Flags().IntVar(&cfg.SamplesPerFrame, "spp", cfg.SamplesPerFrame, "Samples accumulated per frame")
	return cmd
}
