// Package editor owns the in-memory album aggregate during an editing
// session: every structural or property mutation funnels through one
// controlled commit with lock enforcement and bounded undo/redo history.
package editor

import (
	"time"

	"github.com/google/uuid"
	"github.com/heritage-moments/album-studio/internal/album"
	"github.com/heritage-moments/album-studio/internal/layout"
	"github.com/heritage-moments/album-studio/internal/snap"
)

// historyDepth bounds the undo stack; the oldest snapshot is evicted when
// a new edit would exceed it.
const historyDepth = 20

// ZFront and ZBack are the directions for UpdateAssetZIndex.
const (
	ZFront = "front"
	ZBack  = "back"
)

// Store owns one album aggregate. Mutations are not safe for concurrent
// use; Session wraps a Store with the mutex that serializes HTTP access.
type Store struct {
	current album.Album
	undo    []album.Album
	redo    []album.Album

	currentPage   int
	selectedAsset string

	newID func() string
}

// NewStore creates a store around a loaded album.
func NewStore(a *album.Album) *Store {
	return &Store{
		current: a.Clone(),
		newID:   func() string { return uuid.New().String() },
	}
}

// Album returns the current aggregate snapshot. The caller must not
// mutate it; Clone first when in doubt.
func (s *Store) Album() *album.Album {
	return &s.current
}

// CurrentPage returns the focused page index.
func (s *Store) CurrentPage() int {
	return s.currentPage
}

// SelectedAsset returns the selected asset id, empty for none.
func (s *Store) SelectedAsset() string {
	return s.selectedAsset
}

// CanUndo reports whether an undo snapshot exists.
func (s *Store) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (s *Store) CanRedo() bool { return len(s.redo) > 0 }

// commit runs one mutation against the aggregate. When the album is
// locked the mutation is silently skipped; that is the store-level
// integrity guarantee, not a UI courtesy. When the mutation reports a
// change, the prior aggregate is snapshotted, the redo stack cleared, and
// UpdatedAt stamped.
func (s *Store) commit(mutate func(a *album.Album) bool) bool {
	if s.current.Config.IsLocked {
		return false
	}
	return s.commitUnlocked(mutate)
}

func (s *Store) commitUnlocked(mutate func(a *album.Album) bool) bool {
	prev := s.current.Clone()
	if !mutate(&s.current) {
		return false
	}
	s.pushUndo(prev)
	s.redo = nil
	s.current.UpdatedAt = time.Now()
	return true
}

func (s *Store) pushUndo(snapshot album.Album) {
	if len(s.undo) >= historyDepth {
		copy(s.undo, s.undo[1:])
		s.undo = s.undo[:historyDepth-1]
	}
	s.undo = append(s.undo, snapshot)
}

// Undo restores the previous snapshot. No-op on an empty stack.
func (s *Store) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	s.redo = append(s.redo, s.current)
	s.current = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.clampFocus()
	return true
}

// Redo restores the last undone snapshot. No-op on an empty stack.
func (s *Store) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	s.undo = append(s.undo, s.current)
	s.current = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.clampFocus()
	return true
}

func (s *Store) clampFocus() {
	if s.currentPage >= len(s.current.Pages) {
		s.currentPage = len(s.current.Pages) - 1
	}
	if s.currentPage < 0 {
		s.currentPage = 0
	}
	if s.selectedAsset != "" {
		if p, _ := s.current.FindAsset(s.selectedAsset); p < 0 {
			s.selectedAsset = ""
		}
	}
}

// SelectAsset marks an asset as selected; empty id clears the selection.
// Selection is view state, not aggregate state, so it bypasses history.
func (s *Store) SelectAsset(assetID string) {
	s.selectedAsset = assetID
}

// SetCurrentPage moves page focus, clamped to the page range.
func (s *Store) SetCurrentPage(idx int) {
	s.currentPage = idx
	s.clampFocus()
}

// AddPage inserts a pair of blank pages immediately before the back cover
// if one exists, otherwise at the end, and moves focus to the insertion
// point.
func (s *Store) AddPage() bool {
	return s.commit(func(a *album.Album) bool {
		insert := len(a.Pages)
		if n := len(a.Pages); n > 0 && a.Pages[n-1].Layout == album.LayoutCoverBack {
			insert = n - 1
		}
		pair := []album.Page{
			{ID: s.newID(), Layout: album.LayoutFreeform, Assets: []album.Asset{}},
			{ID: s.newID(), Layout: album.LayoutFreeform, Assets: []album.Asset{}},
		}
		a.Pages = append(a.Pages[:insert], append(pair, a.Pages[insert:]...)...)
		album.Renumber(a.Pages)
		s.currentPage = insert
		return true
	})
}

// RemovePage removes the page at idx. No-op when it would leave the album
// empty; focus is clamped afterwards.
func (s *Store) RemovePage(idx int) bool {
	return s.commit(func(a *album.Album) bool {
		if len(a.Pages) <= 1 || idx < 0 || idx >= len(a.Pages) {
			return false
		}
		a.Pages = append(a.Pages[:idx], a.Pages[idx+1:]...)
		album.Renumber(a.Pages)
		s.clampFocus()
		return true
	})
}

// movableRange returns the index bounds pages may occupy, excluding cover
// pages at either end.
func movableRange(pages []album.Page) (lo, hi int) {
	lo, hi = 0, len(pages)-1
	if len(pages) > 0 && pages[0].Layout == album.LayoutCoverFront {
		lo = 1
	}
	if len(pages) > 0 && pages[len(pages)-1].Layout == album.LayoutCoverBack {
		hi = len(pages) - 2
	}
	return lo, hi
}

// MovePage shifts the page at idx by delta positions. Cover pages never
// move and are never a drop target; the destination is clamped into the
// non-cover range.
func (s *Store) MovePage(idx, delta int) bool {
	return s.commit(func(a *album.Album) bool {
		lo, hi := movableRange(a.Pages)
		if idx < lo || idx > hi {
			return false
		}
		dst := idx + delta
		if dst < lo {
			dst = lo
		}
		if dst > hi {
			dst = hi
		}
		if dst == idx {
			return false
		}
		p := a.Pages[idx]
		rest := append(a.Pages[:idx], a.Pages[idx+1:]...)
		a.Pages = append(rest[:dst], append([]album.Page{p}, rest[dst:]...)...)
		album.Renumber(a.Pages)
		s.currentPage = dst
		return true
	})
}

// ReorderPages moves the page at from to position to, with both indices
// clamped into the non-cover range.
func (s *Store) ReorderPages(from, to int) bool {
	return s.MovePage(from, to-from)
}

// AddAsset appends an asset to the page at pageIdx, assigning an id when
// absent.
func (s *Store) AddAsset(pageIdx int, asset album.Asset) bool {
	return s.commit(func(a *album.Album) bool {
		if pageIdx < 0 || pageIdx >= len(a.Pages) {
			return false
		}
		if asset.ID == "" {
			asset.ID = s.newID()
		}
		a.Pages[pageIdx].Assets = append(a.Pages[pageIdx].Assets, asset)
		return true
	})
}

// UpdateAsset replaces the asset with the same id wherever it lives.
func (s *Store) UpdateAsset(asset album.Asset) bool {
	return s.commit(func(a *album.Album) bool {
		p, i := a.FindAsset(asset.ID)
		if p < 0 {
			return false
		}
		a.Pages[p].Assets[i] = asset
		return true
	})
}

// RemoveAsset deletes an asset, clearing the selection when it was the
// selected one.
func (s *Store) RemoveAsset(assetID string) bool {
	return s.commit(func(a *album.Album) bool {
		p, i := a.FindAsset(assetID)
		if p < 0 {
			return false
		}
		assets := a.Pages[p].Assets
		a.Pages[p].Assets = append(assets[:i], assets[i+1:]...)
		if s.selectedAsset == assetID {
			s.selectedAsset = ""
		}
		return true
	})
}

// DuplicateAsset clones an asset onto the same page, offset by (+20,+20)
// percent with its zIndex bumped one above the source.
func (s *Store) DuplicateAsset(assetID string) bool {
	return s.commit(func(a *album.Album) bool {
		p, i := a.FindAsset(assetID)
		if p < 0 {
			return false
		}
		dup := a.Pages[p].Assets[i].Clone()
		dup.ID = s.newID()
		dup.X += 20
		dup.Y += 20
		dup.ZIndex++
		a.Pages[p].Assets = append(a.Pages[p].Assets, dup)
		return true
	})
}

// UpdateAssetZIndex sends an asset to the stacking front or back among its
// page siblings: max+1 or min-1, an unbounded scheme rather than a
// renumbering one.
func (s *Store) UpdateAssetZIndex(assetID, direction string) bool {
	return s.commit(func(a *album.Album) bool {
		p, i := a.FindAsset(assetID)
		if p < 0 {
			return false
		}
		assets := a.Pages[p].Assets
		maxZ, minZ := assets[0].ZIndex, assets[0].ZIndex
		for _, sib := range assets {
			if sib.ZIndex > maxZ {
				maxZ = sib.ZIndex
			}
			if sib.ZIndex < minZ {
				minZ = sib.ZIndex
			}
		}
		switch direction {
		case ZFront:
			assets[i].ZIndex = maxZ + 1
		case ZBack:
			assets[i].ZIndex = minZ - 1
		default:
			return false
		}
		return true
	})
}

// MoveAssetToPage relocates an asset to another page at the given
// coordinates. One state transition: the asset is never on zero or two
// pages across a render.
func (s *Store) MoveAssetToPage(assetID string, dstPage int, x, y float64) bool {
	return s.commit(func(a *album.Album) bool {
		p, i := a.FindAsset(assetID)
		if p < 0 || dstPage < 0 || dstPage >= len(a.Pages) || dstPage == p {
			return false
		}
		moved := a.Pages[p].Assets[i]
		assets := a.Pages[p].Assets
		a.Pages[p].Assets = append(assets[:i], assets[i+1:]...)
		moved.X = x
		moved.Y = y
		a.Pages[dstPage].Assets = append(a.Pages[dstPage].Assets, moved)
		return true
	})
}

// ApplyLayout applies a named template to the page at pageIdx. Spread
// templates require spread view and a resolvable page pair; they fall
// back to the single-page application when the page is solo.
func (s *Store) ApplyLayout(name string, pageIdx int) bool {
	tpl, ok := layout.Get(name)
	if !ok {
		return false
	}
	return s.commit(func(a *album.Album) bool {
		if pageIdx < 0 || pageIdx >= len(a.Pages) {
			return false
		}
		if tpl.Spread {
			sp := album.ResolveSpread(a.Pages, pageIdx, a.Config.UseSpreadView)
			if !sp.IsSolo() {
				layout.ApplySpread(&a.Pages[sp.Left], &a.Pages[sp.Right], tpl, s.newID)
				return true
			}
		}
		layout.ApplySingle(&a.Pages[pageIdx], tpl, s.newID)
		return true
	})
}

// UpdateConfig replaces the editor configuration. The lock flag itself is
// not writable here; ToggleLock is the only door.
func (s *Store) UpdateConfig(cfg album.Config) bool {
	return s.commit(func(a *album.Album) bool {
		cfg.IsLocked = a.Config.IsLocked
		if cfg == a.Config {
			return false
		}
		a.Config = cfg
		return true
	})
}

// ToggleLock flips the editing lock. It bypasses the lock guard by
// definition but still participates in history.
func (s *Store) ToggleLock() bool {
	return s.commitUnlocked(func(a *album.Album) bool {
		a.Config.IsLocked = !a.Config.IsLocked
		return true
	})
}

// SetBackground updates a page's background.
func (s *Store) SetBackground(pageIdx int, bg album.Background) bool {
	return s.commit(func(a *album.Album) bool {
		if pageIdx < 0 || pageIdx >= len(a.Pages) {
			return false
		}
		a.Pages[pageIdx].Background = bg
		return true
	})
}

// UpdateMeta edits title-level metadata.
func (s *Store) UpdateMeta(title, description, category string, hashtags []string) bool {
	return s.commit(func(a *album.Album) bool {
		a.Title = title
		a.Description = description
		a.Category = category
		a.Hashtags = hashtags
		return true
	})
}

// Spread resolves the page pair rendered together at pageIdx under the
// current spread-view setting.
func (s *Store) Spread(pageIdx int) album.Spread {
	return album.ResolveSpread(s.current.Pages, pageIdx, s.current.Config.UseSpreadView)
}

// SnapPreview computes snap adjustments for a dragged rectangle on the
// page at pageIdx without mutating anything. The moving rect is in the
// spread coordinate space when the page renders as a pair; siblings from
// both member pages are converted into that space before matching.
// excludeID names the dragged asset so it never snaps to its own stored
// position; when empty the current selection is excluded instead.
func (s *Store) SnapPreview(pageIdx int, moving snap.Rect, excludeID string) snap.Result {
	sp := s.Spread(pageIdx)
	opts := snap.Options{SpreadView: !sp.IsSolo()}
	if excludeID == "" {
		excludeID = s.selectedAsset
	}

	var siblings []snap.Rect
	for _, idx := range []int{sp.Left, sp.Right} {
		if idx < 0 || idx >= len(s.current.Pages) {
			continue
		}
		for _, a := range s.current.Pages[idx].Assets {
			if a.Hidden || a.ID == excludeID {
				continue
			}
			siblings = append(siblings, snap.Rect{
				X:      sp.ToSpreadX(idx, a.X),
				Y:      a.Y,
				Width:  a.Width,
				Height: a.Height,
			})
		}
	}
	return snap.Compute(moving, siblings, opts)
}
