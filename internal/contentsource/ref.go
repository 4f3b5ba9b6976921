package contentsource

import (
	"errors"
	"regexp"
	"strings"
)

// RefKind classifies a source reference by its shape alone, before any
// network call.
type RefKind string

const (
	KindFile   RefKind = "file"
	KindFolder RefKind = "folder"
)

// Ref is a parsed source reference.
type Ref struct {
	Kind RefKind
	ID   string
}

var ErrInvalidRef = errors.New("invalid source reference")

var (
	folderURLRe = regexp.MustCompile(`/folders/([A-Za-z0-9_-]+)`)
	fileURLRe   = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)
	openURLRe   = regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`)
	bareIDRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
)

// ParseRef extracts the provider item id and kind from a shared link or a
// bare item id. A bare id is assumed to be a file; folder links are only
// recognized by their explicit /folders/ shape.
func ParseRef(raw string) (Ref, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Ref{}, ErrInvalidRef
	}
	if m := folderURLRe.FindStringSubmatch(s); m != nil {
		return Ref{Kind: KindFolder, ID: m[1]}, nil
	}
	if m := fileURLRe.FindStringSubmatch(s); m != nil {
		return Ref{Kind: KindFile, ID: m[1]}, nil
	}
	if m := openURLRe.FindStringSubmatch(s); m != nil {
		return Ref{Kind: KindFile, ID: m[1]}, nil
	}
	if bareIDRe.MatchString(s) {
		return Ref{Kind: KindFile, ID: s}, nil
	}
	return Ref{}, ErrInvalidRef
}
