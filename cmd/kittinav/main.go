// Package main is the kittinav command.
package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/jafrado/kittinav/kitti"
	"github.com/jafrado/kittinav/navigation"
	"github.com/jafrado/kittinav/pointcloud"
	"github.com/jafrado/kittinav/render"
	"github.com/jafrado/kittinav/tracklets"
)

const (
	// Flags.
	flagConfig      = "config"
	flagRoot        = "root"
	flagDate        = "date"
	flagDataset     = "dataset"
	flagFrame       = "frame"
	flagTracklet    = "tracklet"
	flagDebug       = "debug"
	flagDestination = "destination"
	flagFormat      = "format"
	flagFrames      = "frames"
	flagWidth       = "width"
	flagHeight      = "height"
	flagRadius      = "radius"
	flagNoLabels    = "no-labels"

	formatPCD      = "pcd"
	formatPCDAscii = "pcd-ascii"
	formatLAS      = "las"
)

func main() {
	var logger golog.Logger
	renderDefaults := render.DefaultConfig()

	app := &cli.App{
		Name:  "kittinav",
		Usage: "navigate raw KITTI recordings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    flagRoot,
				Usage:   "raw-data root directory",
				EnvVars: []string{"KITTI_ROOT"},
			},
			&cli.StringFlag{
				Name:  flagDate,
				Usage: "session date, e.g. 2011_09_26",
			},
			&cli.IntFlag{
				Name:  flagDataset,
				Usage: "drive number to start from, e.g. 5 for ..._drive_0005_sync",
			},
			&cli.IntFlag{
				Name:  flagFrame,
				Usage: "frame to start from",
			},
			&cli.IntFlag{
				Name:  flagTracklet,
				Usage: "tracklet to select",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = golog.NewDebugLogger("kittinav")
			} else {
				logger = golog.NewLogger("kittinav")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "datasets",
				Usage: "list the drives under the raw-data root",
				Action: func(c *cli.Context) error {
					prov, err := newProvider(c, logger)
					if err != nil {
						return err
					}
					tw := table.NewWriter()
					tw.AppendHeader(table.Row{"#", "drive", "frames", "tracklets"})
					for i, d := range prov.Drives() {
						frames, err := prov.FrameCount(i)
						if err != nil {
							return err
						}
						tks, err := prov.Tracklets(i)
						if err != nil {
							return err
						}
						tw.AppendRow([]interface{}{i, d.Name, frames, len(tks)})
					}
					fmt.Fprintln(c.App.Writer, tw.Render())
					return nil
				},
			},
			{
				Name:  "info",
				Usage: "describe the selected frame",
				Action: func(c *cli.Context) error {
					nav, _, err := newNavigator(c, logger)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, nav.DatasetLabel())
					fmt.Fprintln(c.App.Writer, nav.FrameLabel())
					fmt.Fprintln(c.App.Writer, nav.TrackletLabel())
					fmt.Fprintf(c.App.Writer, "Image: %s\n", nav.ImageFile())

					active := tracklets.Active(nav.Tracklets(), nav.FrameRange().Current)
					fmt.Fprintf(c.App.Writer, "Annotations: %d active of %d in dataset\n",
						len(active), len(nav.Tracklets()))

					cs, err := pointcloud.StatsFromCloud(nav.Cloud())
					if err != nil {
						return err
					}
					meta := nav.Cloud().MetaData()
					tw := table.NewWriter()
					tw.AppendHeader(table.Row{"measure", "value"})
					tw.AppendRow([]interface{}{"points", cs.Size})
					tw.AppendRow([]interface{}{"center", fmt.Sprintf("(%.2f, %.2f, %.2f)",
						cs.Center.X, cs.Center.Y, cs.Center.Z)})
					tw.AppendRow([]interface{}{"x range", fmt.Sprintf("[%.2f, %.2f]", meta.MinX, meta.MaxX)})
					tw.AppendRow([]interface{}{"y range", fmt.Sprintf("[%.2f, %.2f]", meta.MinY, meta.MaxY)})
					tw.AppendRow([]interface{}{"z range", fmt.Sprintf("[%.2f, %.2f]", meta.MinZ, meta.MaxZ)})
					tw.AppendRow([]interface{}{"intensity", fmt.Sprintf("[%.2f, %.2f] mean %.2f",
						cs.MinIntensity, cs.MaxIntensity, cs.MeanIntensity)})
					fmt.Fprintln(c.App.Writer, tw.Render())

					if len(nav.Entries()) == 0 {
						return nil
					}
					et := table.NewWriter()
					et.AppendHeader(table.Row{"#", "class", "points", "center", "yaw"})
					for i, e := range nav.Entries() {
						center := e.Box.Pose().Point()
						et.AppendRow([]interface{}{
							i, e.Label, e.Cropped.Size(),
							fmt.Sprintf("(%.2f, %.2f, %.2f)", center.X, center.Y, center.Z),
							fmt.Sprintf("%.2f", e.Box.Pose().Yaw()),
						})
					}
					fmt.Fprintln(c.App.Writer, et.Render())
					return nil
				},
			},
			{
				Name:  "walk",
				Usage: "step through the frames of a dataset",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "stop after this many frames",
					},
				},
				Action: func(c *cli.Context) error {
					nav, _, err := newNavigator(c, logger)
					if err != nil {
						return err
					}
					limit := c.Int(flagFrames)
					for i := 0; ; i++ {
						if limit > 0 && i >= limit {
							return nil
						}
						fmt.Fprintf(c.App.Writer, "%s  %d points  %s\n",
							nav.FrameLabel(), nav.Cloud().Size(), nav.TrackletLabel())
						if nav.FrameRange().Current == nav.FrameRange().Max {
							return nil
						}
						if err := nav.NextFrame(); err != nil {
							return err
						}
					}
				},
			},
			{
				Name:  "export",
				Usage: "write the selected frame's clouds to disk",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagDestination,
						Required: true,
						Usage:    "output directory for exported clouds",
					},
					&cli.StringFlag{
						Name:  flagFormat,
						Value: formatPCD,
						Usage: "output format: pcd, pcd-ascii, or las",
					},
				},
				Action: exportCommand(&logger),
			},
			{
				Name:  "render",
				Usage: "draw the selected frame from above",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagDestination,
						Required: true,
						Usage:    "output PNG file, or directory when rendering several frames",
					},
					&cli.IntFlag{
						Name:  flagFrames,
						Usage: "render this many frames starting at the selected one",
					},
					&cli.IntFlag{
						Name:  flagWidth,
						Value: renderDefaults.Width,
						Usage: "image width in pixels",
					},
					&cli.IntFlag{
						Name:  flagHeight,
						Value: renderDefaults.Height,
						Usage: "image height in pixels",
					},
					&cli.Float64Flag{
						Name:  flagRadius,
						Value: renderDefaults.Radius,
						Usage: "visible range around the sensor in meters",
					},
					&cli.BoolFlag{
						Name:  flagNoLabels,
						Usage: "leave the status lines out of the image",
					},
				},
				Action: renderCommand(&logger),
			},
			{
				Name:  "version",
				Usage: "print version info for this program",
				Action: func(c *cli.Context) error {
					info, ok := debug.ReadBuildInfo()
					if !ok {
						return errors.New("no build info available")
					}
					fmt.Fprintf(c.App.Writer, "%s %s\n", info.Main.Path, info.Main.Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (kitti.Config, error) {
	conf := kitti.DefaultConfig(c.String(flagRoot))
	if fn := c.String(flagConfig); fn != "" {
		data, err := os.ReadFile(fn)
		if err != nil {
			return kitti.Config{}, errors.Wrap(err, "reading config")
		}
		if err := json.Unmarshal(data, &conf); err != nil {
			return kitti.Config{}, errors.Wrap(err, "parsing config")
		}
	}
	if root := c.String(flagRoot); root != "" {
		conf.Root = root
	}
	if date := c.String(flagDate); date != "" {
		conf.Date = date
	}
	if err := conf.Validate(""); err != nil {
		return kitti.Config{}, err
	}
	return conf, nil
}

func newProvider(c *cli.Context, logger golog.Logger) (*kitti.Provider, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return kitti.NewProvider(conf, logger)
}

// newNavigator builds a navigator positioned by the dataset, frame, and
// tracklet flags. The dataset flag takes a drive number, not an index.
func newNavigator(c *cli.Context, logger golog.Logger) (*navigation.Navigator, *kitti.Provider, error) {
	prov, err := newProvider(c, logger)
	if err != nil {
		return nil, nil, err
	}
	dataset := 0
	if c.IsSet(flagDataset) {
		dataset, err = prov.DriveIndex(c.Int(flagDataset))
		if err != nil {
			return nil, nil, err
		}
	}
	nav, err := navigation.NewNavigatorAt(prov, dataset, logger)
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet(flagFrame) {
		if err := nav.RequestFrame(c.Int(flagFrame)); err != nil {
			return nil, nil, err
		}
	}
	if c.IsSet(flagTracklet) {
		if err := nav.RequestTracklet(c.Int(flagTracklet)); err != nil {
			return nil, nil, err
		}
	}
	return nav, prov, nil
}

func exportCommand(logger *golog.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		nav, prov, err := newNavigator(c, *logger)
		if err != nil {
			return err
		}
		dir := c.Path(flagDestination)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating destination")
		}
		format := c.String(flagFormat)
		ext := format
		if format == formatPCDAscii {
			ext = formatPCD
		}

		prefix := fmt.Sprintf("%s_%010d", nav.DatasetName(), nav.FrameRange().Current)
		fn := filepath.Join(dir, prefix+"."+ext)
		if err := writeCloud(nav.Cloud(), fn, format); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, fn)

		for i, e := range nav.Entries() {
			grounded := pointcloud.Translate(e.Cropped, r3.Vector{Z: -tracklets.HoverOffset})
			cloud := coloredCopy(grounded, prov.ObjectTypeColor(e.Label))
			fn := filepath.Join(dir, fmt.Sprintf("%s_tracklet%02d.%s", prefix, i, ext))
			if err := writeCloud(cloud, fn, format); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, fn)
		}

		if centered := nav.CenteredCloud(); centered != nil {
			fn := filepath.Join(dir, prefix+"_centered."+ext)
			if err := writeCloud(centered, fn, format); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, fn)
		}
		return nil
	}
}

func renderCommand(logger *golog.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		nav, prov, err := newNavigator(c, *logger)
		if err != nil {
			return err
		}
		conf := render.Config{
			Width:  c.Int(flagWidth),
			Height: c.Int(flagHeight),
			Radius: c.Float64(flagRadius),
			Labels: !c.Bool(flagNoLabels),
		}
		be, err := render.NewBirdsEye(conf, prov)
		if err != nil {
			return err
		}

		count := c.Int(flagFrames)
		if count <= 1 {
			return be.WritePNG(c.Path(flagDestination), nav)
		}
		dir := c.Path(flagDestination)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating destination")
		}
		for i := 0; i < count; i++ {
			fn := filepath.Join(dir, fmt.Sprintf("%s_%010d.png", nav.DatasetName(), nav.FrameRange().Current))
			if err := be.WritePNG(fn, nav); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, fn)
			if nav.FrameRange().Current == nav.FrameRange().Max {
				return nil
			}
			if err := nav.NextFrame(); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeCloud writes the cloud to fn in the requested format.
func writeCloud(cloud pointcloud.PointCloud, fn, format string) error {
	switch format {
	case formatLAS:
		return pointcloud.WriteToLASFile(cloud, fn)
	case formatPCD, formatPCDAscii:
		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		defer goutils.UncheckedErrorFunc(f.Close)
		pcdType := pointcloud.PCDBinary
		if format == formatPCDAscii {
			pcdType = pointcloud.PCDAscii
		}
		return pointcloud.ToPCD(cloud, f, pcdType)
	default:
		return errors.Errorf("format must be %s, %s, or %s, got %q",
			formatPCD, formatPCDAscii, formatLAS, format)
	}
}

// coloredCopy rebuilds the cloud with the class color baked into every
// point, keeping intensities where present.
func coloredCopy(cloud pointcloud.PointCloud, c color.NRGBA) pointcloud.PointCloud {
	out := pointcloud.NewWithPrealloc(cloud.Size())
	cloud.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		data := pointcloud.NewColoredData(c)
		if d != nil && d.HasIntensity() {
			data = data.SetIntensity(d.Intensity())
		}
		out.Append(p, data)
		return true
	})
	return out
}
