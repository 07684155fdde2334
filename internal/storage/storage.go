// Package storage persists uploaded media payloads and hands out the URLs
// the editor places on album pages.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Store is the persistence port for media payloads. Implementations must
// be safe for concurrent use.
type Store interface {
	// Save writes the payload and returns its public URL path.
	Save(ctx context.Context, filename string, data []byte) (string, error)
	// Delete removes a previously saved payload by its URL path. Deleting
	// an unknown path is not an error.
	Delete(ctx context.Context, url string) error
}

// removeDiacritics strips diacritical marks (e.g., "Jiří" -> "Jiri") so
// stored names stay plain ASCII.
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SafeName builds a unique storage name from an upload's original
// filename: timestamp, a fresh uuid, and a slugged version of the base
// name with its extension preserved.
func SafeName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = removeDiacritics(base)
	base = strings.ToLower(base)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "upload"
	}
	if len(slug) > 48 {
		slug = slug[:48]
	}

	return fmt.Sprintf("%s-%s-%s%s",
		time.Now().UTC().Format("20060102-150405"),
		uuid.New().String()[:8],
		slug,
		ext,
	)
}
