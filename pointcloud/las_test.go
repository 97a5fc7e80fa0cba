package pointcloud

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestWriteToLASFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "cloud.las")
	err := WriteToLASFile(makeTestCloud(), fn)
	test.That(t, err, test.ShouldBeNil)

	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestWriteToLASFileColored(t *testing.T) {
	pc := New()
	pc.Append(NewVector(1, 2, 3), NewColoredData(color.NRGBA{120, 10, 200, 255}))
	pc.Append(NewVector(4, 5, 6), NewColoredData(color.NRGBA{0, 255, 0, 255}))

	fn := filepath.Join(t.TempDir(), "colored.las")
	err := WriteToLASFile(pc, fn)
	test.That(t, err, test.ShouldBeNil)

	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
