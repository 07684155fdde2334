// Package media prepares uploaded photos and clips for the album editor:
// size probing, threshold-based image compression, and an optional ffmpeg
// pass for oversized videos.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// ImageThreshold is the payload size above which an image upload is
	// recompressed before storage.
	ImageThreshold = 2 * 1024 * 1024
	// VideoThreshold is the payload size above which a video upload is
	// transcoded before storage.
	VideoThreshold = 5 * 1024 * 1024

	// maxDimension bounds the longer edge of a compressed image.
	maxDimension = 2560

	jpegQuality = 85
)

// Info describes a decoded media payload.
type Info struct {
	Width  int
	Height int
	Format string
}

// Kind classifies a payload by its file extension.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".avi": true, ".mkv": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".webp": true,
	".heic": true, ".gif": true,
}

// Classify reports whether a filename looks like an image or a video.
func Classify(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindUnknown
	}
}

// Probe decodes the image header and returns its natural dimensions.
func Probe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image config: %w", err)
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// CompressImage recompresses an image payload as JPEG, downscaling the
// longer edge to maxDimension. Payloads at or below ImageThreshold are
// returned unchanged.
func CompressImage(data []byte) ([]byte, error) {
	if len(data) <= ImageThreshold {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxDimension || height > maxDimension {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxDimension
			newHeight = int(float64(height) * float64(maxDimension) / float64(width))
		} else {
			newHeight = maxDimension
			newWidth = int(float64(width) * float64(maxDimension) / float64(height))
		}
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	// Recompression can lose against an already well-compressed source.
	if buf.Len() >= len(data) {
		return data, nil
	}
	return buf.Bytes(), nil
}

// CompressVideo transcodes an oversized video through ffmpeg. When ffmpeg
// is not installed, or the transcode fails, the original payload is stored
// as-is so uploads never hard-fail on a missing system tool.
func CompressVideo(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) <= VideoThreshold {
		return data, nil
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		log.Printf("warning: ffmpeg not found, storing %d byte video uncompressed", len(data))
		return data, nil
	}

	in, err := os.CreateTemp("", "album-video-in-*")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.Write(data); err != nil {
		in.Close()
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	in.Close()

	outName := in.Name() + ".mp4"
	defer os.Remove(outName)

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-y", "-i", in.Name(),
		"-vcodec", "libx264", "-crf", "28", "-preset", "fast",
		"-acodec", "aac", "-b:a", "96k",
		"-movflags", "+faststart",
		outName,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("warning: ffmpeg transcode failed, storing video uncompressed: %v: %s",
			err, truncate(string(out), 500))
		return data, nil
	}

	compressed, err := os.ReadFile(outName)
	if err != nil {
		return nil, fmt.Errorf("read transcoded video: %w", err)
	}
	if len(compressed) == 0 || len(compressed) >= len(data) {
		return data, nil
	}
	return compressed, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
