package naming

// Package naming derives collision-free, extension-validated storage keys for
// incoming blobs. Storage keys are never derived from caller-supplied
// filenames; only the extension survives, and only when allow-listed.

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackExtension is substituted when the original extension is missing or
// not allow-listed.
const FallbackExtension = "bin"

// allowedExtensions is the fixed allow-list of document formats.
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
	"txt":  {},
	"csv":  {},
}

// SafeExtension returns the lower-cased, non-alphanumeric-stripped suffix of
// the original name if it is allow-listed, otherwise FallbackExtension.
func SafeExtension(original string) string {
	idx := strings.LastIndexByte(original, '.')
	if idx < 0 || idx == len(original)-1 {
		return FallbackExtension
	}
	var b strings.Builder
	for _, r := range strings.ToLower(original[idx+1:]) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	ext := b.String()
	if _, ok := allowedExtensions[ext]; !ok {
		return FallbackExtension
	}
	return ext
}

// Allowed reports whether the original name carries an allow-listed extension.
func Allowed(original string) bool {
	return SafeExtension(original) != FallbackExtension
}

// SafeName produces "{uuid}.{ext}". The random identifier guarantees the
// name is collision-free regardless of the caller-supplied filename.
func SafeName(original string) string {
	return uuid.NewString() + "." + SafeExtension(original)
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DisplayName normalizes a filename for display: diacritics are stripped and
// runs of non-word characters collapse to a single underscore. Letters of any
// script survive; display names carry user-facing text in either catalog
// language. It must never be used as a storage key.
func DisplayName(original string) string {
	s, _, err := transform.String(stripMarks, original)
	if err != nil {
		s = original
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// ObjectKey builds the storage key for a file's current blob. Keys share the
// owning document's prefix so deleting the prefix reclaims every blob of the
// document.
func ObjectKey(documentID, safeName string) string {
	return documentID + "/" + safeName
}

// VersionObjectKey builds the storage key for a version snapshot blob.
func VersionObjectKey(documentID, fileID, safeName string) string {
	return fmt.Sprintf("versions/%s/%s/%d-%s", documentID, fileID, time.Now().Unix(), safeName)
}
