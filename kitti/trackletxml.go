package kitti

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/jafrado/kittinav/tracklets"
)

// The annotation file is a boost serialization archive in XML form. These
// types mirror just the elements the reader needs; everything else in the
// archive is skipped by the decoder.
type trackletsXML struct {
	XMLName   xml.Name        `xml:"boost_serialization"`
	Container trackletListXML `xml:"tracklets"`
}

type trackletListXML struct {
	Count int               `xml:"count"`
	Items []trackletItemXML `xml:"item"`
}

type trackletItemXML struct {
	ObjectType string      `xml:"objectType"`
	H          float64     `xml:"h"`
	W          float64     `xml:"w"`
	L          float64     `xml:"l"`
	FirstFrame int         `xml:"first_frame"`
	Poses      poseListXML `xml:"poses"`
}

type poseListXML struct {
	Count int           `xml:"count"`
	Items []poseItemXML `xml:"item"`
}

type poseItemXML struct {
	Tx          float64 `xml:"tx"`
	Ty          float64 `xml:"ty"`
	Tz          float64 `xml:"tz"`
	Rx          float64 `xml:"rx"`
	Ry          float64 `xml:"ry"`
	Rz          float64 `xml:"rz"`
	State       int     `xml:"state"`
	Occlusion   int     `xml:"occlusion"`
	OcclusionKF int     `xml:"occlusion_kf"`
	Truncation  int     `xml:"truncation"`
}

// ReadTrackletsFile parses a drive's tracklet annotation file.
func ReadTrackletsFile(fn string) (_ []tracklets.Tracklet, err error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	tks, err := readTracklets(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing tracklets %s", fn)
	}
	return tks, nil
}

func readTracklets(r io.Reader) ([]tracklets.Tracklet, error) {
	var doc trackletsXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	list := doc.Container
	if list.Count != len(list.Items) {
		return nil, errors.Errorf("annotation count %d does not match %d tracklet entries",
			list.Count, len(list.Items))
	}

	out := make([]tracklets.Tracklet, 0, len(list.Items))
	for i, item := range list.Items {
		if item.Poses.Count != len(item.Poses.Items) {
			return nil, errors.Errorf("tracklet %d: pose count %d does not match %d pose entries",
				i, item.Poses.Count, len(item.Poses.Items))
		}
		tk := tracklets.Tracklet{
			ObjectType: item.ObjectType,
			H:          item.H,
			W:          item.W,
			L:          item.L,
			FirstFrame: item.FirstFrame,
			Poses:      make([]tracklets.Pose, 0, len(item.Poses.Items)),
		}
		for _, p := range item.Poses.Items {
			tk.Poses = append(tk.Poses, tracklets.Pose{
				Tx: p.Tx, Ty: p.Ty, Tz: p.Tz,
				Rx: p.Rx, Ry: p.Ry, Rz: p.Rz,
				State:       p.State,
				Occlusion:   p.Occlusion,
				OcclusionKF: p.OcclusionKF,
				Truncation:  p.Truncation,
			})
		}
		out = append(out, tk)
	}
	return out, nil
}
