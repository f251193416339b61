// =============================================================================
// Receipt Checker - Row Assembler
// =============================================================================
//
// The account-statement PDF carries no table structure; all we get from the
// extractor is positioned text. This file rebuilds visually ordered lines
// from those tokens:
//
//   1. Glyph fragments on one baseline are merged into word tokens by
//      horizontal proximity (the PDF library emits per-glyph fragments).
//   2. Word tokens are grouped into lines by quantizing the vertical
//      midpoint into coarse buckets, tolerating baseline jitter from mixed
//      fonts and sizes on one logical row.
//   3. Within a bucket, tokens are ordered by descending X — the statement
//      is right-to-left — and joined with single spaces.
//
// Known limitation: a token whose vertical midpoint straddles a bucket
// boundary may land in the neighboring line. Accepted approximation.
//
// =============================================================================

package ledger

import (
	"sort"
	"strings"
)

// yBucketSize is the coarse quantization applied to vertical midpoints when
// grouping tokens into lines.
const yBucketSize = 5.0

// Token is a positioned piece of text on a page. Coordinates follow the PDF
// convention: origin bottom-left, Y grows upward.
type Token struct {
	X    float64 // left edge
	Y    float64 // baseline
	W    float64 // advance width
	H    float64 // nominal height (font size)
	Text string
}

// yBucket quantizes a token's vertical midpoint.
func yBucket(t Token) int {
	mid := t.Y + t.H/2
	b := mid / yBucketSize
	// round half away from zero, matching the statement renderer's layout
	if b >= 0 {
		return int(b+0.5) * int(yBucketSize)
	}
	return int(b-0.5) * int(yBucketSize)
}

// AssembleLines groups tokens into visually ordered lines, top to bottom.
// Within each line, tokens are concatenated right-to-left. Lines that are
// empty after trimming are dropped.
func AssembleLines(tokens []Token) []string {
	buckets := make(map[int][]Token)
	for _, t := range tokens {
		k := yBucket(t)
		buckets[k] = append(buckets[k], t)
	}

	// PDF Y grows upward, so descending bucket keys read top to bottom.
	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		row := buckets[k]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X > row[j].X })

		parts := make([]string, 0, len(row))
		for _, t := range row {
			parts = append(parts, t.Text)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// MergeFragments fuses per-glyph fragments into word tokens. Fragments are
// first grouped onto baselines with the same bucket quantization, then
// scanned left to right; a fragment extends the current word while the gap
// to the previous fragment stays under ~45% of the font size.
func MergeFragments(frags []Token) []Token {
	lines := make(map[int][]Token)
	for _, f := range frags {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		k := yBucket(f)
		lines[k] = append(lines[k], f)
	}

	var words []Token
	for _, fs := range lines {
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].X < fs[j].X })

		var cur Token
		var open bool
		flush := func() {
			if open && strings.TrimSpace(cur.Text) != "" {
				cur.Text = strings.TrimSpace(cur.Text)
				words = append(words, cur)
			}
			open = false
		}
		for _, f := range fs {
			if !open {
				cur, open = f, true
				continue
			}
			gap := f.X - (cur.X + cur.W)
			maxGap := cur.H * 0.45
			if maxGap < 1 {
				maxGap = 1
			}
			if gap <= maxGap {
				cur.W = (f.X + f.W) - cur.X
				cur.Text += f.Text
				if f.H > cur.H {
					cur.H = f.H
				}
				continue
			}
			flush()
			cur, open = f, true
		}
		flush()
	}
	return words
}
