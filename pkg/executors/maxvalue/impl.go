package maxvalue

import (
	"strconv"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// MaxValueWorker finds the maximum numeric value for each key.
// Input records: (key, number), e.g. "temperature\t72.5".
type MaxValueWorker struct{}

// Map passes through records whose value is numeric and drops the rest.
func (w MaxValueWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	if _, ok := parseFloat(kv.Value); ok {
		emit(execreduce.KeyValue{Key: kv.Key, Value: strings.TrimSpace(kv.Value)})
	}
	return nil
}

// Reduce emits the largest value of the key. Finding the maximum is
// associative, so partial maxima are valid input too.
func (w MaxValueWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	var (
		maxVal float64
		seen   bool
	)
	for _, v := range values {
		val, ok := parseFloat(v)
		if !ok {
			continue
		}
		if !seen || val > maxVal {
			maxVal = val
			seen = true
		}
	}

	if seen {
		emit(execreduce.KeyValue{Key: key, Value: strconv.FormatFloat(maxVal, 'f', -1, 64)})
	}
	return nil
}

func (w MaxValueWorker) Description() string {
	return "Finds the maximum numeric value for each key"
}

func parseFloat(s string) (float64, bool) {
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return val, err == nil
}
