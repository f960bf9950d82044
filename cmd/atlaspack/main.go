// atlaspack is a CLI for repacking a mesh's UV charts into texture atlases.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/meshforge/atlaspack/internal/atlas"
	"github.com/meshforge/atlaspack/internal/config"
	"github.com/meshforge/atlaspack/internal/logger"
	"github.com/meshforge/atlaspack/internal/mesh"
	"github.com/meshforge/atlaspack/internal/preview"
	"github.com/meshforge/atlaspack/internal/rasterpack"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	// Flags come after the subcommand.
	os.Args = append(os.Args[:1], os.Args[2:]...)
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Level: cfg.Logging.Level, File: cfg.Logging.LogFile})
	defer logger.Sync()

	switch command {
	case "pack":
		cmdPack(cfg)
	case "info":
		cmdInfo()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`atlaspack - texture atlas chart packing utility

Usage:
  atlaspack <command> [options] <args>

Commands:
  pack <in.obj> <out.obj>   Repack the mesh's UV charts into atlases
  info <in.obj>             Show chart and UV statistics

Options:
  -config path    Config file (default: ./atlaspack.yaml)
  -texsize n      Destination texture size in pixels
  -gutter n       Inter-chart gutter width in pixels
  -preview dir    Write atlas preview PNGs to dir
  -debug          Enable debug logging

Examples:
  atlaspack pack scan.obj scan_packed.obj
  atlaspack pack -texsize 2048 -preview out/ scan.obj scan_packed.obj
  atlaspack info scan.obj`)
}

func cmdPack(cfg *config.Config) {
	args := remainingArgs()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: atlaspack pack [options] <in.obj> <out.obj>")
		os.Exit(1)
	}

	m, err := mesh.LoadOBJ(args[0])
	if err != nil {
		fatal("loading mesh", err)
	}
	charts := mesh.BuildCharts(m)
	m.CaptureWedgeTexCoords()
	logger.Log.Info("mesh loaded",
		zap.Int("vertices", len(m.Verts)),
		zap.Int("faces", len(m.Faces)),
		zap.Int("charts", len(charts)))

	hints := []atlas.TextureHint{{
		WidthRatio:  float64(cfg.Texture.Width) / float64(cfg.Packing.ReferenceResolution),
		HeightRatio: float64(cfg.Texture.Height) / float64(cfg.Packing.ReferenceResolution),
		Width:       cfg.Texture.Width,
		Height:      cfg.Texture.Height,
	}}

	orch := atlas.New(rasterpack.Packer{}, packingParams(cfg.Packing), logger.Log)
	result, err := orch.Pack(m, charts, hints)
	if err != nil {
		fatal("packing", err)
	}
	logger.Log.Info("packing finished",
		zap.Int("packed", result.Packed),
		zap.Int("charts", len(charts)),
		zap.Int("containers", len(result.TextureSizes)))

	// OBJ input carries no anchor faces, so alignment only runs when an
	// upstream stage supplies them; with none this is a no-op.
	atlas.AlignTexels(m, charts, result.TextureSizes, nil, nil)

	if err := mesh.SaveOBJ(m, args[1]); err != nil {
		fatal("writing mesh", err)
	}

	if cfg.Preview.Enabled {
		for ci := range result.TextureSizes {
			img := preview.Render(m, charts, result, ci, cfg.Preview.MaxDim)
			path := filepath.Join(cfg.Preview.Dir, fmt.Sprintf("atlas_%d.png", ci))
			if err := preview.Save(img, path); err != nil {
				fatal("writing preview", err)
			}
			logger.Log.Info("preview written", zap.String("path", path))
		}
	}

	for ci, ts := range result.TextureSizes {
		fmt.Printf("container %d: %dx%d\n", ci, ts.W, ts.H)
	}
	fmt.Printf("packed %d of %d charts\n", result.Packed, len(charts))
}

func cmdInfo() {
	args := remainingArgs()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: atlaspack info <in.obj>")
		os.Exit(1)
	}

	m, err := mesh.LoadOBJ(args[0])
	if err != nil {
		fatal("loading mesh", err)
	}
	charts := mesh.BuildCharts(m)

	fmt.Printf("Mesh:   %s\n", args[0])
	fmt.Printf("Verts:  %d\n", len(m.Verts))
	fmt.Printf("Faces:  %d\n", len(m.Faces))
	fmt.Printf("Charts: %d\n", len(charts))
	for _, c := range charts {
		box := c.UVBox()
		fmt.Printf("  chart %3d: %4d faces, uv box %.4f x %.4f\n",
			c.ID, c.FaceCount(), box.DimX(), box.DimY())
	}
}

func packingParams(pc config.PackingConfig) atlas.Params {
	return atlas.Params{
		ReferenceResolution: pc.ReferenceResolution,
		GutterWidth:         pc.GutterWidth,
		RotationNum:         pc.RotationNum,
		PermutationCutoff:   pc.PermutationCutoff,
		MaxRasterDim:        pc.MaxRasterDim,
		MaxContainerSize:    pc.MaxContainerSize,
		MaxPackAttempts:     pc.MaxPackAttempts,
		Growth:              pc.Growth,
	}
}

func remainingArgs() []string {
	return flag.Args()
}

func fatal(what string, err error) {
	logger.Log.Error(what, zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", what, err)
	os.Exit(1)
}
