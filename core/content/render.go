// Package content turns the lightweight markup used by blog posts and course
// notes into an ordered list of typed fragments.
package content

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindTable        Kind = "table"
	KindLetteredList Kind = "lettered_list"
	KindCheckList    Kind = "check_list"
	KindList         Kind = "list"
	KindHeading      Kind = "heading"
	KindEmphasis     Kind = "emphasis"
	KindParagraph    Kind = "paragraph"
)

const (
	checkMark         = "\u2714"
	variationSelector = "\uFE0F"
)

type (
	Row struct {
		Index int      `json:"index"`
		Cells []string `json:"cells"`
	}

	Fragment struct {
		Kind   Kind     `json:"kind"`
		Level  int      `json:"level,omitempty"`
		Text   string   `json:"text,omitempty"`
		Items  []string `json:"items,omitempty"`
		Header []string `json:"header,omitempty"`
		Rows   []Row    `json:"rows,omitempty"`
		// Compact marks paragraphs that came from one line of a multi-line block.
		Compact bool `json:"compact,omitempty"`
	}

	// rule turns a paragraph into fragments; ok is false when it does not apply.
	rule func(p string) (frags []Fragment, ok bool)
)

// Odd reports whether the row sits at an odd position, for striped styling.
func (r Row) Odd() bool { return r.Index%2 == 1 }

var (
	unescaper = strings.NewReplacer(
		"\r\n", "\n",
		`\n`, "\n",
		`\"`, `"`,
		`\'`, `'`,
	)
	blankLineRegex = regexp.MustCompile(`\n[ \t]*\n`)
	letteredRegex  = regexp.MustCompile(`^[a-z]\)`)
	separatorRegex = regexp.MustCompile(`^[|\-\s]*---[|\-\s]*$`)

	// order matters: the first rule that applies wins.
	rules = []rule{
		tableRule,
		letteredRule,
		checkListRule,
		dashListRule,
		headingRule,
		emphasisRule,
		plainRule,
	}
)

// Normalize turns escaped newline and quote sequences into the characters they
// stand for. Text without escape sequences comes back unchanged.
func Normalize(s string) string {
	return unescaper.Replace(s)
}

// Paragraphs splits normalized content on blank lines, keeping input order.
// Blank paragraphs are dropped.
func Paragraphs(s string) []string {
	parts := blankLineRegex.Split(s, -1)
	paras := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// Render converts raw content into fragments, one paragraph at a time.
func Render(s string) []Fragment {
	frags := make([]Fragment, 0)
	for _, p := range Paragraphs(Normalize(s)) {
		for _, r := range rules {
			if fs, ok := r(p); ok {
				frags = append(frags, fs...)
				break
			}
		}
	}
	return frags
}

func lines(p string) []string {
	all := strings.Split(p, "\n")
	out := make([]string, 0, len(all))
	for _, l := range all {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func splitCells(line string) []string {
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	for len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func tableRule(p string) ([]Fragment, bool) {
	if !strings.Contains(p, "|") {
		return nil, false
	}
	var pipeLines []string
	for _, l := range lines(p) {
		if strings.HasPrefix(l, "|") {
			pipeLines = append(pipeLines, l)
		}
	}
	// header, separator and at least one data row
	if len(pipeLines) < 3 || !separatorRegex.MatchString(pipeLines[1]) {
		return nil, false
	}

	frag := Fragment{Kind: KindTable, Header: splitCells(pipeLines[0])}
	for i, l := range pipeLines[2:] {
		frag.Rows = append(frag.Rows, Row{Index: i, Cells: splitCells(l)})
	}
	return []Fragment{frag}, true
}

func letteredRule(p string) ([]Fragment, bool) {
	ls := lines(p)
	items := make([]string, 0, len(ls))
	for _, l := range ls {
		if !letteredRegex.MatchString(l) {
			return nil, false
		}
		items = append(items, strings.TrimSpace(l[2:]))
	}
	return []Fragment{{Kind: KindLetteredList, Items: items}}, len(items) > 0
}

func checkListRule(p string) ([]Fragment, bool) {
	if !strings.Contains(p, checkMark) {
		return nil, false
	}
	var items []string
	for _, l := range lines(p) {
		if !strings.Contains(l, checkMark) {
			continue
		}
		l = strings.Replace(l, checkMark, "", 1)
		l = strings.TrimPrefix(strings.TrimSpace(l), variationSelector)
		items = append(items, strings.TrimSpace(l))
	}
	return []Fragment{{Kind: KindCheckList, Items: items}}, true
}

func dashListRule(p string) ([]Fragment, bool) {
	if !strings.HasPrefix(p, "- ") {
		return nil, false
	}
	var items []string
	for _, l := range lines(p) {
		if strings.HasPrefix(l, "- ") {
			items = append(items, strings.TrimSpace(l[2:]))
		}
	}
	return []Fragment{{Kind: KindList, Items: items}}, true
}

func headingRule(p string) ([]Fragment, bool) {
	for level := 2; level <= 4; level++ {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(p, prefix) {
			text := strings.TrimSpace(p[len(prefix):])
			return []Fragment{{Kind: KindHeading, Level: level, Text: text}}, true
		}
	}
	return nil, false
}

func emphasisRule(p string) ([]Fragment, bool) {
	if !strings.HasPrefix(p, "**") || !strings.Contains(p[2:], "**") {
		return nil, false
	}
	text := strings.TrimSpace(strings.ReplaceAll(p, "**", ""))
	return []Fragment{{Kind: KindEmphasis, Text: text}}, true
}

func plainRule(p string) ([]Fragment, bool) {
	ls := lines(p)
	if len(ls) == 1 {
		return []Fragment{{Kind: KindParagraph, Text: ls[0]}}, true
	}
	frags := make([]Fragment, 0, len(ls))
	for _, l := range ls {
		frags = append(frags, Fragment{Kind: KindParagraph, Text: l, Compact: true})
	}
	return frags, true
}
