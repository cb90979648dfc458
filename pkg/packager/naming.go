package packager

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// TimestampLayout is the time stamp embedded in runtime file names.
const TimestampLayout = "20060102-150405"

// RuntimeName names a generated document:
// {kind}_{slug}_{20060102-150405}.{ext}.
func RuntimeName(kind records.DocumentKind, denomination string, now time.Time, ext string) string {
	slug := Slug(denomination)
	if slug == "" {
		slug = "societe"
	}
	return fmt.Sprintf("%s_%s_%s%s", kind, slug, now.Format(TimestampLayout), dotted(ext))
}

// Suffixed inserts "-n" before the extension of name. It names the n-th
// artifact generated under the same runtime name within one second.
func Suffixed(name string, n int) string {
	if n <= 1 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}

// AnalysisName names a document filed under category. The name is reduced
// to [a-z0-9_-].
func AnalysisName(category, documentName, ext string) string {
	return sanitize(category+"_"+documentName, '_') + dotted(ext)
}

// Slug folds accents, lowercases and joins the remaining words with '-'.
func Slug(s string) string {
	return sanitize(s, '-')
}

func sanitize(s string, sep rune) string {
	folded := fold(strings.ToLower(strings.TrimSpace(s)))
	var sb strings.Builder
	pending := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && sb.Len() > 0 {
				sb.WriteRune(sep)
			}
			pending = false
			sb.WriteRune(r)
		case r == '_' || r == '-':
			if sb.Len() > 0 {
				sb.WriteRune(r)
			}
			pending = false
		default:
			pending = true
		}
	}
	return strings.Trim(sb.String(), "_-")
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func dotted(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}
