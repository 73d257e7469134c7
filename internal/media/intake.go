// Package media validates uploaded image files and persists them through a
// blob store, producing the stable reference the catalog records.
package media

import (
	"context"
	"io"
	"path"
	"strings"
)

// allowed image extensions, matched against the last dot-delimited segment
// of the original filename, case-insensitively.
var allowedExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// Upload is an inbound file: the client-supplied name and its content.
type Upload struct {
	Filename string
	Data     io.Reader
}

// Outcome is the tagged result of an intake attempt. Exactly one of the two
// shapes applies: Stored with a non-empty Ref, or not Stored with a Reason.
type Outcome struct {
	Stored bool
	Ref    string
	Reason string
}

func rejected(reason string) Outcome { return Outcome{Reason: reason} }

// BlobStore persists named blobs. Writing an existing name overwrites it;
// there is no collision detection at this layer.
type BlobStore interface {
	Save(ctx context.Context, name string, data io.Reader) error
}

type Intake struct {
	store BlobStore
}

func NewIntake(store BlobStore) *Intake { return &Intake{store: store} }

// Accept validates the upload and, if it passes, writes it to the blob store.
// Validation failures come back as a rejected Outcome; only storage faults
// are reported as errors.
func (i *Intake) Accept(ctx context.Context, up *Upload) (Outcome, error) {
	if up == nil || up.Filename == "" {
		return rejected("no file"), nil
	}
	if !extensionAllowed(up.Filename) {
		return rejected("extension not allowed"), nil
	}
	name := sanitizeFilename(up.Filename)
	if name == "" {
		return rejected("unusable filename"), nil
	}
	if err := i.store.Save(ctx, name, up.Data); err != nil {
		return Outcome{}, err
	}
	return Outcome{Stored: true, Ref: name}, nil
}

func extensionAllowed(filename string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return false
	}
	_, ok := allowedExts[strings.ToLower(filename[idx+1:])]
	return ok
}

// sanitizeFilename strips directory components and replaces anything outside
// a conservative rune set, so the result is safe to use as a storage key
// under a public directory. Names left without a stem after cleaning (".png",
// "....png") come back empty and get rejected by the caller.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = path.Base(filename)

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	// no hidden files or "." / ".." keys
	name := strings.TrimLeft(b.String(), ".")
	// trimming must leave a stem in front of the extension, otherwise the
	// stored key would be the bare extension
	if idx := strings.LastIndexByte(name, '.'); idx <= 0 {
		return ""
	}
	return name
}
