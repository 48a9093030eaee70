package generator

import (
	"fmt"
	"io"
	"math/rand/v2"
)

// MaxValueGenerator generates metric records: "{metric}\t{value}"
type MaxValueGenerator struct {
	KeyCount int
	rand     *rand.Rand
}

var metricKeys = []string{
	"temperature",
	"humidity",
	"pressure",
	"cpu_usage",
	"memory_usage",
	"disk_io",
	"network_latency",
	"response_time",
	"error_rate",
	"request_count",
}

func (g *MaxValueGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *MaxValueGenerator) keys() int {
	if g.KeyCount <= 0 || g.KeyCount > len(metricKeys) {
		return len(metricKeys)
	}
	return g.KeyCount
}

func (g *MaxValueGenerator) WriteRecord(w io.Writer) error {
	key := metricKeys[g.rand.IntN(g.keys())]
	// Values between 0 and 100 with 2 decimal places
	_, err := fmt.Fprintf(w, "%s\t%.2f\n", key, g.rand.Float64()*100)
	return err
}

func (g *MaxValueGenerator) Description() string {
	return "Metric records: key\\tvalue (for max/average operations)"
}

func (g *MaxValueGenerator) DefaultCount() int64 {
	return 1e5
}
