// Package render draws navigated frames from straight above.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jafrado/kittinav/navigation"
	"github.com/jafrado/kittinav/pointcloud"
	"github.com/jafrado/kittinav/spatialmath"
)

var font *truetype.Font

// init sets up the font used for the status lines.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Colors maps annotation classes to display colors.
type Colors interface {
	ObjectTypeColor(objectType string) color.NRGBA
}

// Config sizes a bird's eye view.
type Config struct {
	// Width and Height are the output size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// Radius is the visible range around the sensor in meters.
	Radius float64 `json:"radius"`
	// Labels draws the status lines into the image.
	Labels bool `json:"labels"`
}

// DefaultConfig views 60 meters around the sensor at 960x960.
func DefaultConfig() Config {
	return Config{Width: 960, Height: 960, Radius: 60, Labels: true}
}

var (
	backgroundColor = color.NRGBA{R: 15, G: 15, B: 20, A: 255}
	scanColor       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	selectedColor   = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
)

// BirdsEye projects frames onto the ground plane with the sensor at the
// view center, X pointing up and Y pointing left.
type BirdsEye struct {
	conf   Config
	colors Colors
}

// NewBirdsEye returns a renderer for the given view.
func NewBirdsEye(conf Config, colors Colors) (*BirdsEye, error) {
	if conf.Width <= 0 || conf.Height <= 0 {
		return nil, errors.Errorf("view size %dx%d is not positive", conf.Width, conf.Height)
	}
	if conf.Radius <= 0 {
		return nil, errors.New("view radius must be positive")
	}
	return &BirdsEye{conf: conf, colors: colors}, nil
}

func (b *BirdsEye) scale() float64 {
	side := b.conf.Width
	if b.conf.Height < side {
		side = b.conf.Height
	}
	return float64(side) / (2 * b.conf.Radius)
}

func (b *BirdsEye) project(p r3.Vector) (float64, float64) {
	scale := b.scale()
	cx := float64(b.conf.Width) / 2
	cy := float64(b.conf.Height) / 2
	return cx - p.Y*scale, cy - p.X*scale
}

func (b *BirdsEye) drawCloud(dc *gg.Context, cloud pointcloud.PointCloud, c color.Color) {
	dc.SetColor(c)
	cloud.Iterate(func(p r3.Vector, _ pointcloud.Data) bool {
		x, y := b.project(p)
		dc.SetPixel(int(x), int(y))
		return true
	})
}

// drawFootprint outlines the box's ground rectangle.
func (b *BirdsEye) drawFootprint(dc *gg.Context, box spatialmath.Box, c color.Color, width float64) {
	pose := box.Pose()
	hx := box.Dims().X / 2
	hy := box.Dims().Y / 2
	for i, corner := range [][2]float64{{hx, hy}, {-hx, hy}, {-hx, -hy}, {hx, -hy}} {
		x, y := b.project(pose.TransformPoint(r3.Vector{X: corner[0], Y: corner[1]}))
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func drawString(dc *gg.Context, text string, x, y float64, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, x, y, 0, 0, float64(dc.Width()), 1, gg.AlignLeft)
}

// Snapshot renders the navigator's current frame: the scan in white,
// active tracklets hovering in their class colors with footprints
// outlined, the selection highlighted, and the selection's centered copy
// at the view center.
func (b *BirdsEye) Snapshot(nav *navigation.Navigator) image.Image {
	dc := gg.NewContext(b.conf.Width, b.conf.Height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	b.drawCloud(dc, nav.Cloud(), scanColor)

	for _, e := range nav.Entries() {
		c := b.colors.ObjectTypeColor(e.Label)
		b.drawCloud(dc, e.Cropped, c)
		b.drawFootprint(dc, e.Box, c, 1)
	}
	if selected, ok := nav.Selected(); ok {
		b.drawFootprint(dc, selected.Box, selectedColor, 2)
		if centered := nav.CenteredCloud(); centered != nil {
			b.drawCloud(dc, centered, selectedColor)
		}
	}

	if b.conf.Labels {
		size := float64(b.conf.Height) * 0.025
		for i, line := range []string{nav.DatasetLabel(), nav.FrameLabel(), nav.TrackletLabel()} {
			drawString(dc, line, size/2, float64(i)*size*1.2, selectedColor, size)
		}
	}
	return dc.Image()
}

// WritePNG renders the current frame and writes it to fn.
func (b *BirdsEye) WritePNG(fn string, nav *navigation.Navigator) error {
	return errors.Wrap(gg.SavePNG(fn, b.Snapshot(nav)), "writing snapshot")
}
