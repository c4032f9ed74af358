package linewrap

import (
	"regexp"
	"strings"
)

// WordSplitter turns text into the ordered sequence of wrap atoms the
// paragraph wrapper measures and breaks on.
type WordSplitter func(text string) []string

// SimpleWordSplitter splits on whitespace only, like a plain text wrapper.
func SimpleWordSplitter(text string) []string {
	return strings.Fields(text)
}

// TagWrapping selects how template tags behave during wrapping.
type TagWrapping string

const (
	// TagsAtomic treats tags as indivisible atoms that never gain an
	// internal line break.
	TagsAtomic TagWrapping = "atomic"
	// TagsWrap lets tags wrap like ordinary text, with multi-word tags
	// coalesced up to a bounded span (legacy behavior).
	TagsWrap TagWrapping = "wrap"
)

const (
	// maxCoalesceWords bounds how many whitespace-separated words a single
	// construct may span in wrap mode.
	maxCoalesceWords = 12
	// maxCoalesceWordsAtomic is the effectively-unbounded span used in
	// atomic mode.
	maxCoalesceWordsAtomic = 128
)

// coalesceGroup describes a multi-word construct for the coalescing strategy:
// a word matching start, zero or more words matching middle, and a word
// matching end merge into one atom. complete matches a word that is already a
// whole construct on its own and must not coalesce forward.
type coalesceGroup struct {
	start    *regexp.Regexp
	middle   *regexp.Regexp
	end      *regexp.Regexp
	complete *regexp.Regexp
}

var anyWord = regexp.MustCompile(`.+`)

var coalesceGroups = []coalesceGroup{
	{
		start:    regexp.MustCompile(`^\{%`),
		middle:   anyWord,
		end:      regexp.MustCompile(`%\}$`),
		complete: regexp.MustCompile(`^\{%.*%\}$`),
	},
	{
		start:    regexp.MustCompile(`^\{#`),
		middle:   anyWord,
		end:      regexp.MustCompile(`#\}$`),
		complete: regexp.MustCompile(`^\{#.*#\}$`),
	},
	{
		start:    regexp.MustCompile(`^\{\{`),
		middle:   anyWord,
		end:      regexp.MustCompile(`\}\}$`),
		complete: regexp.MustCompile(`^\{\{.*\}\}$`),
	},
	{
		start:    regexp.MustCompile(`^<!--`),
		middle:   anyWord,
		end:      regexp.MustCompile(`-->$`),
		complete: regexp.MustCompile(`^<!--.*-->$`),
	},
	{
		start:    regexp.MustCompile(`^</?[a-zA-Z]`),
		middle:   anyWord,
		end:      regexp.MustCompile(`>$`),
		complete: regexp.MustCompile(`^</?[a-zA-Z][^>]*>$`),
	},
	{
		start:    regexp.MustCompile(`^\[`),
		middle:   anyWord,
		end:      regexp.MustCompile(`[\])]$`),
		complete: regexp.MustCompile(`^\[[^\]]*\](?:\([^)]*\)|\[[^\]]*\])?$`),
	},
	{
		start:  regexp.MustCompile("^`"),
		middle: anyWord,
		end:    regexp.MustCompile("`$"),
		// Complete code spans are detected structurally; the run lengths
		// of the opening and closing backticks must agree.
	},
}

// isCompleteCodeSpan reports whether the word is a syntactically complete
// inline code span: an opening backtick run, non-empty content, and a closing
// run of exactly the same length. Such a word must never coalesce forward
// (`` `fn()` `` must not merge with a following word).
func isCompleteCodeSpan(word string) bool {
	n := 0
	for n < len(word) && word[n] == '`' {
		n++
	}
	if n == 0 || len(word) < 2*n+1 {
		return false
	}
	m := 0
	for m < len(word) && word[len(word)-1-m] == '`' {
		m++
	}
	if m != n {
		return false
	}
	return strings.Trim(word[n:len(word)-n], "`") != ""
}

// coalesceTrigger is the quick-reject check: a word can only begin a
// multi-word construct if its first byte is a delimiter trigger or it
// contains a backtick.
func coalesceTrigger(word string) bool {
	switch word[0] {
	case '{', '<', '[', '`':
		return true
	}
	return strings.ContainsRune(word, '`')
}

type htmlMDSplitter struct {
	atomicTags bool
	groups     []coalesceGroup
	maxSpan    int
}

func (s *htmlMDSplitter) split(text string) []string {
	text = NormalizeAdjacentTags(text)
	if s.atomicTags {
		arena, substituted := extractAtomicConstructs(text)
		atoms := restoreAtomicConstructs(strings.Fields(substituted), arena)
		return mergeAdjacentClosers(atoms)
	}
	return s.coalesce(strings.Fields(text))
}

// mergeAdjacentClosers merges an atom ending in a tag-closing delimiter
// with an immediately following closing-tag atom of the same family.
// Adjacency normalization separates such a pair with a space, and when
// the opening tag's body contains the family delimiter character the
// paired pattern cannot capture both, leaving two atoms the wrapper
// could break a line between. Keeping them in one atom lets
// denormalization restore the original adjacency.
func mergeAdjacentClosers(atoms []string) []string {
	if len(atoms) < 2 {
		return atoms
	}
	out := make([]string, 1, len(atoms))
	out[0] = atoms[0]
	for _, atom := range atoms[1:] {
		last := out[len(out)-1]
		if f := closingFamily(last); f != nil && isClosingTag(atom, f) {
			out[len(out)-1] = last + " " + atom
			continue
		}
		out = append(out, atom)
	}
	return out
}

// closingFamily returns the tag family whose closing delimiter ends the
// atom, or nil.
func closingFamily(atom string) *tagFamily {
	for i := range tagFamilies {
		if strings.HasSuffix(atom, tagFamilies[i].close) {
			return &tagFamilies[i]
		}
	}
	return nil
}

// isClosingTag reports whether the atom is a closing tag of the given
// family, like "{% /name %}".
func isClosingTag(atom string, f *tagFamily) bool {
	if len(atom) < len(f.open)+len(f.close) ||
		!strings.HasPrefix(atom, f.open) || !strings.HasSuffix(atom, f.close) {
		return false
	}
	body := strings.TrimSpace(atom[len(f.open) : len(atom)-len(f.close)])
	return strings.HasPrefix(body, "/")
}

// coalesce greedily merges consecutive words whose concatenation forms a
// registered multi-word construct, up to maxSpan words.
func (s *htmlMDSplitter) coalesce(words []string) []string {
	out := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		w := words[i]
		if !coalesceTrigger(w) || isCompleteCodeSpan(w) {
			out = append(out, w)
			i++
			continue
		}
		if merged, next := s.tryCoalesce(words, i); next > i+1 {
			out = append(out, merged)
			i = next
			continue
		}
		out = append(out, w)
		i++
	}
	return out
}

// tryCoalesce attempts to merge words[i:] into one construct, returning the
// merged atom and the index of the first unconsumed word.
func (s *htmlMDSplitter) tryCoalesce(words []string, i int) (string, int) {
	w := words[i]
	for _, g := range s.groups {
		if !g.start.MatchString(w) {
			continue
		}
		if g.complete != nil && g.complete.MatchString(w) {
			return "", i
		}
		limit := min(len(words), i+s.maxSpan)
		for j := i + 1; j < limit; j++ {
			if !g.end.MatchString(words[j]) {
				continue
			}
			valid := true
			for k := i + 1; k < j; k++ {
				if !g.middle.MatchString(words[k]) {
					valid = false
					break
				}
			}
			if valid {
				return strings.Join(words[i:j+1], " "), j + 1
			}
			break
		}
	}
	return "", i
}

// The two splitter configurations are immutable and built eagerly at startup;
// the mode space is just the two TagWrapping values, so there is nothing to
// construct lazily.
var (
	atomicSplitter = &htmlMDSplitter{atomicTags: true, maxSpan: maxCoalesceWordsAtomic}
	wrapSplitter   = &htmlMDSplitter{groups: coalesceGroups, maxSpan: maxCoalesceWords}
)

// HTMLMDWordSplitter returns the Markdown/HTML-aware word splitter for the
// given tag wrapping mode. The returned splitter keeps atomic constructs
// (code spans, links, tags) together as single wrap atoms.
func HTMLMDWordSplitter(tags TagWrapping) WordSplitter {
	if tags == TagsWrap {
		return wrapSplitter.split
	}
	return atomicSplitter.split
}
