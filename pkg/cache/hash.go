package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/relocate"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// planTile is the part of a tile that influences planning. Kinds and
// metadata are left out; ids are kept because plans name tiles by id.
type planTile struct {
	ID     string    `json:"id"`
	Placed bool      `json:"placed"`
	Anchor grid.Cell `json:"anchor"`
	Span   grid.Span `json:"span"`
	Caps   grid.Caps `json:"caps"`
}

// PlanKey returns the cache key for planning req against tiles on a
// rows x cols grid. strategy is the relocator's Key, which carries its
// tuning as well as its name. Tiles are hashed in configuration order
// because claim order decides which tile owns a contested cell.
func PlanKey(tiles []grid.Tile, rows, cols int, req relocate.Request, strategy string) string {
	pts := make([]planTile, len(tiles))
	for i, t := range tiles {
		pts[i] = planTile{ID: t.ID, Placed: t.Placed, Span: t.Span, Caps: t.Caps}
		if t.Placed {
			pts[i].Anchor = t.Anchor
		}
	}
	return hashKey("plan", strategy, rows, cols, req, pts)
}
