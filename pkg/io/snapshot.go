package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown snapshot extension %q (want .json or .toml)", filepath.Ext(path))
}

// Snapshot is a serialized set of families.
type Snapshot struct {
	Families []*family.Family `json:"families" toml:"families" validate:"dive,required"`
}

// Family returns the family with the given id.
func (s *Snapshot) Family(id string) (*family.Family, bool) {
	for _, f := range s.Families {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Read decodes a snapshot in the given format and validates it.
func Read(r io.Reader, format Format) (*Snapshot, error) {
	var s Snapshot
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
	if err := Prepare(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadJSON decodes a JSON snapshot from r.
func ReadJSON(r io.Reader) (*Snapshot, error) { return Read(r, FormatJSON) }

// ReadTOML decodes a TOML snapshot from r.
func ReadTOML(r io.Reader) (*Snapshot, error) { return Read(r, FormatTOML) }

// Import reads the snapshot file at path, choosing the format by extension.
func Import(path string) (*Snapshot, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Prepare normalizes genders, fills in missing member ids and validates s.
func Prepare(s *Snapshot) error {
	seen := make(map[string]bool, len(s.Families))
	for _, f := range s.Families {
		if f == nil {
			continue
		}
		if f.ID != "" {
			if err := errors.ValidateFamilyID(f.ID); err != nil {
				return err
			}
		}
		if seen[f.ID] {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate family id %q", f.ID)
		}
		seen[f.ID] = true

		for _, ms := range f.Memberships {
			m := ms.Member
			if m == nil {
				continue
			}
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			m.Gender = m.Gender.Normalized()
			for _, list := range [][]family.Stub{m.Parents, m.Children, m.Spouses} {
				for i := range list {
					if list[i].Gender != "" {
						list[i].Gender = list[i].Gender.Normalized()
					}
				}
			}
		}
	}

	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "%s", describe(err))
	}
	return nil
}

// describe turns validator errors into one readable line.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid snapshot"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Snapshot."), fe.Tag()))
	}
	return "invalid snapshot: " + strings.Join(parts, "; ")
}

// Write encodes s in the given format.
func Write(s *Snapshot, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format %q", format)
	}
	return nil
}

// WriteJSON encodes s as indented JSON.
func WriteJSON(s *Snapshot, w io.Writer) error { return Write(s, w, FormatJSON) }

// WriteTOML encodes s as TOML.
func WriteTOML(s *Snapshot, w io.Writer) error { return Write(s, w, FormatTOML) }

// Export writes s to path, choosing the format by extension.
func Export(s *Snapshot, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(s, f, format)
}
