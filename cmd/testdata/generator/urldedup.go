package generator

import (
	"io"
	"math/rand/v2"
)

// URLDedupGenerator generates URL records with many duplicates: "{n}\thttps://domain/path?params"
type URLDedupGenerator struct {
	rand *rand.Rand
	seq  []byte
}

var domains = []string{
	"google.com",
	"facebook.com",
	"twitter.com",
	"github.com",
	"stackoverflow.com",
	"reddit.com",
	"youtube.com",
	"linkedin.com",
	"amazon.com",
	"wikipedia.org",
}

var paths = []string{
	"",
	"/home",
	"/about",
	"/contact",
	"/products",
	"/api/v1",
	"/api/v2",
	"/docs",
	"/blog",
	"/search",
	"/user/profile",
	"/settings",
	"/help",
}

var params = []string{
	"",
	"?page=1",
	"?id=123",
	"?ref=homepage",
	"?utm_source=test",
	"?sort=desc",
}

var (
	tabHTTPS     = []byte("\thttps://")
	newlineBytes = []byte("\n")
)

func (g *URLDedupGenerator) Init(r *rand.Rand) {
	g.rand = r
	g.seq = []byte{'0'}
}

// next increments the decimal record number held in g.seq.
func (g *URLDedupGenerator) next() {
	for i := len(g.seq) - 1; i >= 0; i-- {
		if g.seq[i] < '9' {
			g.seq[i]++
			return
		}
		g.seq[i] = '0'
	}
	g.seq = append([]byte{'1'}, g.seq...)
}

func (g *URLDedupGenerator) WriteRecord(w io.Writer) error {
	domain := domains[g.rand.IntN(len(domains))]
	path := paths[g.rand.IntN(len(paths))]
	param := params[g.rand.IntN(len(params))]

	if _, err := w.Write(g.seq); err != nil {
		return err
	}
	g.next()

	if _, err := w.Write(tabHTTPS); err != nil {
		return err
	}
	if _, err := io.WriteString(w, domain); err != nil {
		return err
	}
	if _, err := io.WriteString(w, path); err != nil {
		return err
	}
	if _, err := io.WriteString(w, param); err != nil {
		return err
	}
	_, err := w.Write(newlineBytes)
	return err
}

func (g *URLDedupGenerator) Description() string {
	return "URL records for deduplication: n\\thttps://domain.com/path?params"
}

func (g *URLDedupGenerator) DefaultCount() int64 {
	return 5e4
}
