package errors

import (
	"regexp"
	"unicode"
)

// maxBoardIDLength bounds board identifiers. Ids end up in file names,
// Redis keys and Mongo _id values.
const maxBoardIDLength = 128

// boardIDRegex matches the allowed board id alphabet.
var boardIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBoardID validates a board identifier for safety.
//
// Board ids are used as file names by the file store, so the rules are
// conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, not starting with '.'
//   - No path traversal sequences
func ValidateBoardID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBoardID, "board id cannot be empty")
	}
	if len(id) > maxBoardIDLength {
		return New(ErrCodeInvalidBoardID, "board id too long (max %d characters)", maxBoardIDLength)
	}
	if !boardIDRegex.MatchString(id) {
		return New(ErrCodeInvalidBoardID, "invalid board id: %q", id)
	}
	if id == "." || id == ".." || containsDotDot(id) {
		return New(ErrCodeInvalidBoardID, "board id cannot contain path traversal sequences (..)")
	}
	return nil
}

func containsDotDot(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			return true
		}
	}
	return false
}

// ValidateTileID validates a tile identifier. Tile ids are opaque, but
// they must be non-empty and free of control characters.
func ValidateTileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "tile id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "tile id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "tile id contains invalid control characters")
		}
	}
	return nil
}

// ValidateSpan validates a requested footprint size.
func ValidateSpan(x, y int) error {
	if x < 1 || y < 1 {
		return New(ErrCodeInvalidSpan, "span %dx%d must be at least 1x1", x, y)
	}
	return nil
}

// ValidateGridSize validates a grid size against optional bounds.
// Zero bounds are ignored.
func ValidateGridSize(rows, cols, minRows, maxRows, minCols, maxCols int) error {
	if rows < 1 || cols < 1 {
		return New(ErrCodeInvalidGrid, "grid %dx%d must have at least one row and one column", rows, cols)
	}
	if minRows > 0 && rows < minRows {
		return New(ErrCodeInvalidGrid, "grid needs at least %d rows, got %d", minRows, rows)
	}
	if maxRows > 0 && rows > maxRows {
		return New(ErrCodeInvalidGrid, "grid allows at most %d rows, got %d", maxRows, rows)
	}
	if minCols > 0 && cols < minCols {
		return New(ErrCodeInvalidGrid, "grid needs at least %d columns, got %d", minCols, cols)
	}
	if maxCols > 0 && cols > maxCols {
		return New(ErrCodeInvalidGrid, "grid allows at most %d columns, got %d", maxCols, cols)
	}
	return nil
}

// kindRegex matches tile content kinds ("switch", "3d_printer").
var kindRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// ValidateKind validates a tile content kind.
func ValidateKind(kind string) error {
	if kind == "" {
		return New(ErrCodeInvalidInput, "kind cannot be empty")
	}
	if !kindRegex.MatchString(kind) {
		return New(ErrCodeInvalidInput, "invalid kind: %q", kind)
	}
	return nil
}
