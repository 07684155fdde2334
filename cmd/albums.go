package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heritage-moments/album-studio/internal/config"
	"github.com/heritage-moments/album-studio/internal/database"
)

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List a family's albums",
	Long:  `Retrieves and displays all albums stored for a family.`,
	RunE:  runAlbums,
}

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new album",
	Long: `Create a new album with the default page skeleton: front cover,
two inner pages, and back cover.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(createCmd)

	albumsCmd.Flags().String("family", "", "Family ID to list albums for (required)")
	_ = albumsCmd.MarkFlagRequired("family")

	createCmd.Flags().String("family", "", "Family ID the album belongs to (required)")
	_ = createCmd.MarkFlagRequired("family")
	createCmd.Flags().String("description", "", "Album description")
	createCmd.Flags().String("category", "", "Album category (e.g. 'vacation', 'holiday')")
	createCmd.Flags().StringSlice("hashtags", nil, "Comma-separated hashtags")
}

func runAlbums(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	familyID := mustGetString(cmd, "family")

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

	summaries, err := albums.ListAlbums(ctx, familyID)
	if err != nil {
		return fmt.Errorf("failed to list albums: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No albums found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPAGES\tASSETS\tPUBLISHED")
	fmt.Fprintln(w, "--\t-----\t--------\t-----\t------\t---------")

	for i := range summaries {
		s := &summaries[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\n",
			s.ID, s.Title, s.Category, s.PageCount, s.AssetCount, s.Published)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d albums\n", len(summaries))

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	familyID := mustGetString(cmd, "family")

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

	meta := &database.AlbumMeta{
		ID:          uuid.New().String(),
		FamilyID:    familyID,
		Title:       args[0],
		Description: mustGetString(cmd, "description"),
		Category:    mustGetString(cmd, "category"),
		Hashtags:    mustGetStringSlice(cmd, "hashtags"),
	}

	if err := albums.CreateAlbum(ctx, meta); err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}

	fmt.Printf("Created album '%s' (%s)\n", meta.Title, meta.ID)
	return nil
}
