package sections

// Renumberer assigns sequential section numbers under a convention.
// Counters for deeper levels reset whenever a shallower level advances.
type Renumberer struct {
	conv     Convention
	counters [maxLevels]int
	singleH1 bool
}

// NewRenumberer returns a renumberer for the given convention.
func NewRenumberer(conv Convention, opts ...RenumberOption) *Renumberer {
	r := &Renumberer{conv: conv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenumberOption configures a Renumberer.
type RenumberOption func(*Renumberer)

// WithSingleH1 marks the document as having exactly one H1. That H1 acts
// as the document title and is never renumbered.
func WithSingleH1() RenumberOption {
	return func(r *Renumberer) { r.singleH1 = true }
}

// NextNumber advances the counter for level and returns the formatted
// section number, e.g. "2." or "1.2" or "II.A". Returns "" when the
// level is not numbered under the convention.
func (r *Renumberer) NextNumber(level int) string {
	f := r.conv.Levels[level-1]
	if f == nil {
		return ""
	}
	r.counters[level-1]++
	for i := level; i < maxLevels; i++ {
		r.counters[i] = 0
	}
	return f.FormatCounters(r.counters)
}

// FormatHeading advances the counter for level and returns the full
// heading text, e.g. "1.2 Details". Unnumbered levels and a lone H1
// title return the title unchanged.
func (r *Renumberer) FormatHeading(level int, title string) string {
	if r.singleH1 && level == 1 {
		return title
	}
	num := r.NextNumber(level)
	if num == "" {
		return title
	}
	return num + " " + title
}

// RenumberHeadings infers the document's numbering convention and
// renumbers every heading that carries a recognized prefix at a
// qualifying level. All other headings pass through unchanged, as does
// the whole document when no convention is detected.
func RenumberHeadings(headings []Heading) []Heading {
	conv := InferConvention(headings)
	conv = ApplyHierarchicalConstraint(conv, headings)
	conv = NormalizeConvention(conv)

	out := append([]Heading(nil), headings...)
	if !conv.IsActive() {
		return out
	}

	h1Count := 0
	for _, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	var opts []RenumberOption
	if h1Count == 1 {
		opts = append(opts, WithSingleH1())
	}
	r := NewRenumberer(conv, opts...)

	for i, h := range headings {
		if conv.Levels[h.Level-1] == nil {
			continue
		}
		prefix := ExtractPrefix(h.Text)
		if prefix == nil {
			continue
		}
		out[i] = Heading{Level: h.Level, Text: r.FormatHeading(h.Level, prefix.Title)}
	}
	return out
}
