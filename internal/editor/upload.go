package editor

import (
	"context"
	"fmt"

	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/media"
	"github.com/heritage-moments/album-studio/internal/storage"
)

// maxPlacementDimension caps the percentage size an uploaded asset gets
// when it lands in the unplaced tray.
const maxPlacementDimension = 40.0

// UploadFile is one file in an upload batch.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadResult reports one file's outcome. Err is set for a failed file;
// the batch continues past failures.
type UploadResult struct {
	Name  string
	URL   string
	Asset *album.Asset
	Err   error
}

// ProgressFunc receives per-file progress as 0-100, keyed by file index.
type ProgressFunc func(fileIdx int, percent int)

// UploadMedia processes a batch sequentially: compress over-threshold
// payloads, store the file, register it in the media library, and stage an
// unplaced asset sized from the media's natural aspect ratio. A slow file
// stalls the files behind it; that is the documented trade for a
// predictable order.
func (s *Store) UploadMedia(ctx context.Context, files []UploadFile, store storage.Store, library database.MediaStore, onProgress ProgressFunc) []UploadResult {
	if onProgress == nil {
		onProgress = func(int, int) {}
	}

	results := make([]UploadResult, 0, len(files))
	for idx, f := range files {
		// A cancelled batch still reports every remaining file, so callers
		// see one result per input.
		if err := ctx.Err(); err != nil {
			results = append(results, UploadResult{Name: f.Name, Err: err})
			continue
		}
		onProgress(idx, 0)
		res := s.uploadOne(ctx, idx, f, store, library, onProgress)
		onProgress(idx, 100)
		results = append(results, res)
	}
	return results
}

func (s *Store) uploadOne(ctx context.Context, idx int, f UploadFile, store storage.Store, library database.MediaStore, onProgress ProgressFunc) UploadResult {
	kind := media.Classify(f.Name)
	if kind == media.KindUnknown {
		return UploadResult{Name: f.Name, Err: fmt.Errorf("unsupported file type: %s", f.Name)}
	}

	data := f.Data
	switch kind {
	case media.KindImage:
		if compressed, err := media.CompressImage(data); err == nil {
			data = compressed
		}
	case media.KindVideo:
		if compressed, err := media.CompressVideo(ctx, data); err == nil {
			data = compressed
		}
	}
	onProgress(idx, 40)

	url, err := store.Save(ctx, f.Name, data)
	if err != nil {
		return UploadResult{Name: f.Name, Err: fmt.Errorf("upload %s: %w", f.Name, err)}
	}
	onProgress(idx, 80)

	width, height := 0, 0
	if kind == media.KindImage {
		if info, err := media.Probe(data); err == nil {
			width, height = info.Width, info.Height
		}
	}

	item := &database.MediaItem{
		FamilyID:  s.current.FamilyID,
		URL:       url,
		Kind:      string(kind),
		Width:     width,
		Height:    height,
		SizeBytes: int64(len(data)),
	}
	if library != nil {
		if err := library.AddMedia(ctx, item); err != nil {
			return UploadResult{Name: f.Name, URL: url, Err: fmt.Errorf("register %s: %w", f.Name, err)}
		}
	}

	asset := album.Asset{
		ID:     s.newID(),
		URL:    url,
		ZIndex: 1,
	}
	if kind == media.KindVideo {
		asset.Type = album.AssetVideo
	} else {
		asset.Type = album.AssetImage
	}
	asset.Width, asset.Height = placementSize(width, height)

	staged := asset
	if !s.commit(func(a *album.Album) bool {
		a.Unplaced = append(a.Unplaced, staged)
		return true
	}) {
		return UploadResult{Name: f.Name, URL: url, Err: fmt.Errorf("album is locked")}
	}

	return UploadResult{Name: f.Name, URL: url, Asset: &asset}
}

// placementSize converts natural pixel dimensions into a percentage box
// whose longer edge is capped at maxPlacementDimension, keeping aspect.
func placementSize(width, height int) (w, h float64) {
	if width <= 0 || height <= 0 {
		return maxPlacementDimension, maxPlacementDimension
	}
	ratio := float64(width) / float64(height)
	if ratio >= 1 {
		return maxPlacementDimension, maxPlacementDimension / ratio
	}
	return maxPlacementDimension * ratio, maxPlacementDimension
}
