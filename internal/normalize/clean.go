package normalize

import "regexp"

var (
	// excessNewlines matches three or more consecutive newlines.
	excessNewlines = regexp.MustCompile(`\n{3,}`)

	// blankLines matches newline pairs separated only by whitespace.
	// \p{Zs} covers no-break spaces, which product pages use for layout.
	blankLines = regexp.MustCompile(`\n[\s\p{Zs}\x{FEFF}]*\n`)

	// leadingNewlines and trailingNewlines match newlines at either end.
	leadingNewlines  = regexp.MustCompile(`^\n+`)
	trailingNewlines = regexp.MustCompile(`\n+$`)

	// repeatedSpaces matches two or more ASCII spaces.
	repeatedSpaces = regexp.MustCompile(`[ ]{2,}`)
)

// Clean tidies rendered text: at most one blank line between blocks,
// whitespace-only lines collapsed, no leading or trailing newlines, and
// single spaces between words.
func Clean(s string) string {
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	s = leadingNewlines.ReplaceAllString(s, "")
	s = trailingNewlines.ReplaceAllString(s, "")
	s = repeatedSpaces.ReplaceAllString(s, " ")
	return s
}
