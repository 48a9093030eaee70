package generator

import (
	"io"
	"math/rand/v2"
	"strings"
)

// TitleIndexGenerator generates (title, page html) records for the title
// index, mixed with (word, "") records that request a word.
type TitleIndexGenerator struct {
	// RequestRate is the chance that a record is a request instead of a
	// page. Defaults to 0.05.
	RequestRate float64
	// PageWords is the number of words per page. Defaults to 40.
	PageWords int
	rand      *rand.Rand
}

var words = []string{
	"gopher", "channel", "goroutine", "interface", "slice",
	"map", "struct", "pointer", "closure", "defer",
	"panic", "select", "mutex", "context", "generic",
}

var titles = []string{
	"Effective_Go", "Go_Memory_Model", "Concurrency_Patterns", "Go_Proverbs",
	"Error_Handling", "Generics_Tutorial", "Testing_in_Go", "Profiling",
	"Modules_Reference", "Style_Guide", "Data_Race_Detector", "Fuzzing",
}

// markup is wrapped around page words; the title index mapper strips it.
var markup = []string{"<p>", "</p>", "<b>", "</b>", ",", ".", "&#160;", "<!-- note -->"}

func (g *TitleIndexGenerator) Init(r *rand.Rand) {
	g.rand = r
	if g.RequestRate <= 0 {
		g.RequestRate = 0.05
	}
	if g.PageWords <= 0 {
		g.PageWords = 40
	}
}

func (g *TitleIndexGenerator) WriteRecord(w io.Writer) error {
	if g.rand.Float64() < g.RequestRate {
		_, err := io.WriteString(w, words[g.rand.IntN(len(words))]+"\t\n")
		return err
	}

	var b strings.Builder
	b.WriteString(titles[g.rand.IntN(len(titles))])
	b.WriteByte('\t')
	for i := range g.PageWords {
		if i > 0 {
			b.WriteByte(' ')
		}
		if g.rand.IntN(4) == 0 {
			b.WriteString(markup[g.rand.IntN(len(markup))])
		}
		word := words[g.rand.IntN(len(words))]
		if g.rand.IntN(3) == 0 {
			word = strings.ToUpper(word[:1]) + word[1:]
		}
		b.WriteString(word)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func (g *TitleIndexGenerator) Description() string {
	return "Wiki pages: title\\tpage html, with word\\t<empty> marking requested words"
}

func (g *TitleIndexGenerator) DefaultCount() int64 {
	return 1e4
}
