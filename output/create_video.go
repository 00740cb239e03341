package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/icza/mjpeg"
	"github.com/nfnt/resize"
	"golang.org/x/image/font/basicfont"
)

const DefaultFPS = 2

// Frame is one image of the timelapse, stamped with its label.
type Frame struct {
	Label string
	Image image.Image
}

// CreateTimelapse writes the frames as a Motion-JPEG AVI. Every frame is
// resized to the first frame's dimensions.
func CreateTimelapse(frames []Frame, outputPath string, fps int32) (string, error) {
	if len(frames) == 0 {
		return "", errors.New("no frames to write")
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if !strings.HasSuffix(outputPath, ".avi") {
		outputPath += ".avi"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	bounds := frames[0].Image.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	writer, err := mjpeg.New(outputPath, int32(width), int32(height), fps)
	if err != nil {
		return "", err
	}

	for _, f := range frames {
		img := f.Image
		if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
			img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, stamp(img, f.Label), &jpeg.Options{Quality: 90}); err != nil {
			writer.Close()
			return "", err
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			writer.Close()
			return "", err
		}
	}

	if err := writer.Close(); err != nil {
		return "", err
	}
	return outputPath, nil
}

func stamp(img image.Image, label string) image.Image {
	if label == "" {
		return img
	}
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)

	w, h := dc.MeasureString(label)
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(4, 4, w+8, h+8)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(label, 8, 8+h/2, 0, 0.5)
	return dc.Image()
}
