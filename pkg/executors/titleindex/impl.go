package titleindex

import (
	"regexp"
	"slices"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// TitleIndexWorker builds an inverted index from words to page titles,
// restricted to words that were explicitly requested.
//
// Map input records are (title, page HTML). A record with an empty page is
// a request for its key and passes through unchanged as (word, ""). Reduce
// output has only requested words, as (word, "title1#title2#...") with
// distinct titles in sorted order.
type TitleIndexWorker struct{}

// minWordLen is the shortest token that is indexed.
const minWordLen = 3

// markup is stripped from page text in this order, each match replaced by a
// space.
var markup = []*regexp.Regexp{
	regexp.MustCompile(`<!--.*?-->`),
	regexp.MustCompile(`<style.*?>.*?</style>`),
	regexp.MustCompile(`<.*?>`),
	regexp.MustCompile(`[.,!?:;()\[\]"^]`),
	regexp.MustCompile(`&#\d+`),
}

// Words returns the indexable tokens of a page: lowercased, with comments,
// style blocks, tags, punctuation and numeric character references removed.
func Words(page string) []string {
	text := strings.ToLower(strings.ReplaceAll(page, "\n", " "))
	for _, re := range markup {
		text = re.ReplaceAllString(text, " ")
	}

	words := strings.Fields(text)
	return slices.DeleteFunc(words, func(w string) bool { return len(w) < minWordLen })
}

// Map emits (word, title) for every token of the page.
func (w TitleIndexWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	if kv.Value == "" {
		emit(kv)
		return nil
	}

	for _, word := range Words(kv.Value) {
		emit(execreduce.KeyValue{Key: word, Value: kv.Key})
	}
	return nil
}

func (w TitleIndexWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	requested := false
	titles := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			requested = true
			continue
		}
		titles = append(titles, v)
	}

	if !requested {
		return nil
	}

	slices.Sort(titles)
	titles = slices.Compact(titles)

	emit(execreduce.KeyValue{Key: key, Value: strings.Join(titles, "#")})
	return nil
}

func (w TitleIndexWorker) Description() string {
	return "Indexes page words by title (map: title\\tpage html) and lists the titles of requested words (word\\t<empty>)"
}
