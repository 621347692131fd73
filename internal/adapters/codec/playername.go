package codec

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxPlayerNameRunes = 32

// PlayerName derives a display name from a shared file's path.
func PlayerName(path string) string {
	base := filepath.Base(path)
	return SanitizePlayerName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// SanitizePlayerName strips control, format, private-use, surrogate and
// unassigned code points plus markup and path characters, keeps at most 32
// runes and falls back to "Unknown".
func SanitizePlayerName(name string) string {
	var sb strings.Builder
	kept := 0
	for _, r := range name {
		if kept >= maxPlayerNameRunes {
			break
		}
		if !keepRune(r) {
			continue
		}
		sb.WriteRune(r)
		kept++
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "Unknown"
	}
	return out
}

func keepRune(r rune) bool {
	switch r {
	case '<', '>', '"', '\'', '\\', '/', unicode.ReplacementChar:
		return false
	}
	switch {
	case unicode.IsControl(r),
		unicode.Is(unicode.Cf, r),
		unicode.Is(unicode.Co, r),
		unicode.Is(unicode.Cs, r):
		return false
	}
	// Unassigned: not in any general category table.
	return unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z)
}
