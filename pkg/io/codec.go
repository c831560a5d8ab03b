package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tilegrid/pkg/errors"
)

// Format is a board document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported board file %q (want .json or .toml)", path)
	}
}

// ReadJSON decodes a JSON board document from r.
//
// Unknown fields are rejected so that typos in hand-edited files surface
// instead of silently dropping configuration. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Board, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Board
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode board")
	}
	return &doc, nil
}

// WriteJSON encodes d as indented JSON and writes it to w.
// This format can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(d *Board, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadTOML decodes a TOML board document from r. Undecoded keys are
// rejected like unknown JSON fields.
func ReadTOML(r io.Reader) (*Board, error) {
	var doc Board
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode board")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown board keys: %v", undecoded)
	}
	return &doc, nil
}

// WriteTOML encodes d as TOML and writes it to w.
func WriteTOML(d *Board, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a board document in the given format.
func Read(r io.Reader, f Format) (*Board, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
}

// Write encodes a board document in the given format.
func Write(d *Board, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(d, w)
	case FormatTOML:
		return WriteTOML(d, w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
}

// Import reads the board document at path, choosing the format from the
// file extension.
func Import(path string) (*Board, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Export writes d to path, choosing the format from the file extension.
func Export(d *Board, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
