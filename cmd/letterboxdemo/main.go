// Command letterboxdemo renders blurred letterbox backgrounds for a still
// frame played in a simulated scene player.
package main

import (
	"context"
	"flag"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/philMorel/letterbox"
	_ "github.com/philMorel/letterbox/gpu"
	"github.com/philMorel/letterbox/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		input    = flag.String("frame", "", "video frame (PNG or JPEG)")
		width    = flag.Int("width", 800, "player width")
		height   = flag.Int("height", 600, "player height")
		strength = flag.Float64("strength", letterbox.DefaultBlurStrength, "blur strength")
		frames   = flag.Int("frames", 10, "frames to play")
		output   = flag.String("output", ".", "output directory")
		dbPath   = flag.String("db", ":memory:", "toggle state database")
		noGPU    = flag.Bool("nogpu", false, "force the 2D fallback")
		listen   = flag.String("metrics", "", "serve metrics on this address while running")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("-frame is required")
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	letterbox.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	frame, err := loadFrame(*input)
	if err != nil {
		log.Fatalf("Failed to load frame: %v", err)
	}
	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	toggles, err := storage.OpenToggleStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open toggle store: %v", err)
	}
	defer toggles.Close()

	reg := prometheus.NewRegistry()
	if *listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*listen, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	opts := []letterbox.Option{
		letterbox.WithConfigStore(letterbox.MapConfigStore{
			letterbox.PluginID: {"blurStrength": *strength},
		}),
		letterbox.WithToggleStore(toggles),
		letterbox.WithMetrics(reg),
	}
	if *noGPU {
		opts = append(opts, letterbox.WithoutGPU())
	}

	pl := newPlayer(frame, *width, *height, *output)
	pg := &page{path: "/scenes/1", player: pl}
	loop := letterbox.NewFrameLoop()
	plugin := letterbox.NewPlugin(pg, loop, opts...)

	attached := make(chan *letterbox.Controller, 1)
	plugin.OnSetup(func(c *letterbox.Controller, err error) {
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		attached <- c
	})
	loop.Post(func() {
		if err := plugin.Start(); err != nil {
			log.Fatalf("Start failed: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ctrl *letterbox.Controller
	for ctrl == nil {
		select {
		case ctrl = <-attached:
		case <-ctx.Done():
			log.Fatalf("Player not attached: %v", ctx.Err())
		case <-time.After(16 * time.Millisecond):
			loop.Step()
		}
	}

	for ran := 0; ran < *frames && loop.Pending() > 0; {
		ran += loop.Step()
	}
	pl.pause()
	loop.Post(plugin.Close)
	loop.Step()
	plugin.Wait()

	if pl.container.err != nil {
		log.Fatalf("Failed to write background: %v", pl.container.err)
	}
	log.Printf("Wrote %d backgrounds to %s (%s backend)", pl.container.written, *output, ctrl.Backend())
}

func loadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
