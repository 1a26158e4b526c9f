// Command hwcpipe runs the compositing pipeline over synthetic frames
// and in-process sync devices, then dumps the chain and timeline state.
// It exists for bring-up and debugging, not production.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	hwc "github.com/intel/hwcompose"
	"github.com/intel/hwcompose/config"
	"github.com/intel/hwcompose/pipeline"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "pipeline config file (YAML)")
		frames  = flag.Int("frames", 60, "number of synthetic frames to run")
		blankAt = flag.Int("blank", -1, "layer index to blank on display 0, -1 for none")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	hwc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("hwcpipe: %v", err)
		}
	}

	p, err := pipeline.New(
		pipeline.WithConfig(cfg),
		pipeline.WithFiller(hwc.BufferHandle(0xb1a4), hwc.FRc(0, 0, 64, 64)),
	)
	if err != nil {
		log.Fatalf("hwcpipe: %v", err)
	}
	defer p.Close()

	for frame := 0; frame < *frames; frame++ {
		content := synthesize(cfg, uint32(frame+1))
		if *blankAt >= 0 {
			p.Blanker().Clear(0, frame == 0)
			p.Blanker().Blank(0, *blankAt)
		}
		plan, err := p.Commit(content)
		if err != nil {
			log.Fatalf("hwcpipe: frame %d: %v", frame, err)
		}
		// Pretend the hardware retires the frame immediately.
		for i, retire := range plan.Retire {
			if retire == nil {
				continue
			}
			p.Retire(i)
			for _, l := range plan.Content.Displays[i].Layers {
				if l.Release != nil {
					l.Release.Close()
				}
			}
			retire.Close()
		}
	}

	p.Dump(os.Stdout)
}

// synthesize builds a plausible frame: a full-screen base layer plus an
// oversized overlay that exercises the viewport clip.
func synthesize(cfg *config.Config, frame uint32) *hwc.Content {
	content := &hwc.Content{}
	for i, d := range cfg.Displays {
		base := &hwc.Layer{
			Buffer:       hwc.BufferHandle(0x1000 + uintptr(i)),
			SourceCrop:   hwc.FRc(0, 0, float32(d.Width), float32(d.Height)),
			DisplayFrame: hwc.Rc(0, 0, d.Width, d.Height),
			Blend:        hwc.BlendNone,
		}
		overlay := &hwc.Layer{
			Buffer:       hwc.BufferHandle(0x2000 + uintptr(i)),
			SourceCrop:   hwc.FRc(0, 0, 256, 256),
			DisplayFrame: hwc.Rc(d.Width-128, d.Height-128, d.Width+128, d.Height+128),
			Transform:    hwc.TransformRot90,
			Blend:        hwc.BlendPremult,
		}
		content.Displays = append(content.Displays, &hwc.DisplayContents{
			Enabled:         true,
			FrameIndex:      frame,
			GeometryChanged: frame == 1,
			Bounds:          hwc.Rc(0, 0, d.Width, d.Height),
			Layers:          []*hwc.Layer{base, overlay},
		})
	}
	return content
}
