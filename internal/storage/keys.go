package storage

import (
	"strings"
	"time"
)

const filenameTimeLayout = "2006-01-02_15-04"

// SanitizeFilename reduces name to ASCII letters, digits, '_' and '-'.
// Other runes become '_', runs of '_' are collapsed and the result is never empty.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		ok := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "document"
	}
	return out
}

// DisplayFilename builds the user-facing PDF name: <type>_<name>_<minute timestamp>.pdf.
func DisplayFilename(docType, ownerName string, at time.Time) string {
	return SanitizeFilename(docType+"_"+ownerName+"_"+at.Format(filenameTimeLayout)) + ".pdf"
}

// ObjectKey namespaces an object by document type and owner: {type}/{owner}/{filename}.
func ObjectKey(docType, ownerID, filename string) string {
	return SanitizeFilename(docType) + "/" + SanitizeFilename(ownerID) + "/" + filename
}
