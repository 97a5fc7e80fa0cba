package kitti

import "image/color"

// objectTypeColors is the display palette for the annotation classes used
// by the raw recordings.
var objectTypeColors = map[string]color.NRGBA{
	"Car":              {R: 0, G: 200, B: 0, A: 255},
	"Van":              {R: 0, G: 200, B: 200, A: 255},
	"Truck":            {R: 0, G: 80, B: 255, A: 255},
	"Pedestrian":       {R: 255, G: 0, B: 0, A: 255},
	"Person (sitting)": {R: 255, G: 130, B: 0, A: 255},
	"Cyclist":          {R: 255, G: 0, B: 255, A: 255},
	"Tram":             {R: 255, G: 255, B: 0, A: 255},
	"Misc":             {R: 140, G: 140, B: 140, A: 255},
}

// ObjectTypeColor returns the display color for an annotation class.
// Unknown classes render white.
func ObjectTypeColor(objectType string) color.NRGBA {
	if c, ok := objectTypeColors[objectType]; ok {
		return c
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}
