package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/heritage-moments/album-studio/internal/config"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/editor"
	"github.com/heritage-moments/album-studio/internal/media"
	"github.com/heritage-moments/album-studio/internal/storage"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <album-id> <folder-path> [folder-path...]",
	Short: "Upload media files to an album",
	Long: `Upload photos and videos from one or more folders into an album's
unplaced tray. Files are compressed when over the size threshold and
registered in the family media library.

By default, only files in the specified folders are uploaded (non-recursive).
Use -r to search recursively in subdirectories.

Example:
  album-studio upload 4f1c2d9e /path/to/photos
  album-studio upload -r 4f1c2d9e /path/to/photos  # recursive search`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUploadCmd,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolP("recursive", "r", false, "Search for media recursively in subdirectories")
}

// collectMediaFiles gathers files with recognized media extensions from
// the given folders.
func collectMediaFiles(folderPaths []string, recursive bool) ([]string, error) {
	var filePaths []string
	for _, folderPath := range folderPaths {
		info, err := os.Stat(folderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", folderPath)
		}

		if recursive {
			err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && media.Classify(d.Name()) != media.KindUnknown {
					filePaths = append(filePaths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
			}
			continue
		}

		entries, err := os.ReadDir(folderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if media.Classify(entry.Name()) != media.KindUnknown {
				filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
			}
		}
	}
	return filePaths, nil
}

func runUploadCmd(cmd *cobra.Command, args []string) error {
	albumID := args[0]
	folderPaths := args[1:]
	recursive := mustGetBool(cmd, "recursive")

	cfg := config.Load()

	filePaths, err := collectMediaFiles(folderPaths, recursive)
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		fmt.Println("No media files found in the specified folders.")
		return nil
	}

	fmt.Printf("Found %d file(s) to upload from %d folder(s)\n", len(filePaths), len(folderPaths))

	ctx := context.Background()
	pool, err := connectDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	albums, err := database.GetAlbumWriter()
	if err != nil {
		return err
	}
	library, err := database.GetMediaStore()
	if err != nil {
		return err
	}
	fileStore, err := storage.NewLocal(cfg.Media.Root, cfg.Media.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to prepare media directory: %w", err)
	}

	a, err := albums.LoadAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("failed to load album: %w", err)
	}
	if a == nil {
		return fmt.Errorf("album %s not found", albumID)
	}
	fmt.Printf("Uploading to album: %s\n\n", a.Title)

	files := make([]editor.UploadFile, 0, len(filePaths))
	for _, filePath := range filePaths {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", filePath, err)
		}
		files = append(files, editor.UploadFile{
			Name: filepath.Base(filePath),
			Data: data,
		})
	}

	uploadBar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	store := editor.NewStore(a)
	results := store.UploadMedia(ctx, files, fileStore, library, func(fileIdx, percent int) {
		if percent == 100 {
			uploadBar.Add(1)
		}
	})
	fmt.Println()

	uploaded := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("Failed: %s: %v\n", res.Name, res.Err)
			continue
		}
		uploaded++
	}

	if uploaded == 0 {
		return fmt.Errorf("no files were uploaded successfully")
	}

	if err := albums.SaveAlbum(ctx, store.Album()); err != nil {
		return fmt.Errorf("failed to save album: %w", err)
	}

	fmt.Printf("\nDone! Uploaded %d file(s) to album '%s'. They are staged in the unplaced tray.\n", uploaded, a.Title)
	return nil
}
