// Package slug derives URL slugs from titles and allocates unique ones against
// a store.
package slug

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title contains nothing slug-worthy.
const Fallback = "post"

// Letters that carry no combining mark and would otherwise be dropped.
var transliterations = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "ae",
	"ø", "o", "Ø", "o",
	"œ", "oe", "Œ", "oe",
	"đ", "d", "Đ", "d",
	"ł", "l", "Ł", "l",
	"þ", "th", "Þ", "th",
	"&", " and ",
)

// Make converts title to a lowercase ASCII slug: diacritics are stripped and
// every run of other characters becomes a single "-". Make is idempotent.
func Make(title string) string {
	s := strings.ToLower(transliterations.Replace(title))

	// transform.Chain keeps state, so it is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}

	if b.Len() == 0 {
		return Fallback
	}
	return b.String()
}

// Checker reports whether a slug is already used by a post other than
// excludeID.
type Checker interface {
	ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error)
}

// Allocator picks the first free slug among base, base-1, base-2, ...
type Allocator struct {
	checker Checker
}

func NewAllocator(checker Checker) *Allocator {
	return &Allocator{checker: checker}
}

// Allocate returns a slug for title that no other post uses. excludeID is the
// id of the post being updated, or "" on create. Store errors are returned
// as-is; the caller owns any retry policy.
func (a *Allocator) Allocate(ctx context.Context, title, excludeID string) (string, error) {
	base := Make(title)
	candidate := base

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		taken, err := a.checker.ExistsSlug(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}

		candidate = base + "-" + strconv.Itoa(n)
	}
}
