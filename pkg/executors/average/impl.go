package average

import (
	"strconv"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// AverageWorker calculates the average numeric value per key.
// Input records: (key, number), e.g. "temperature\t72.5".
type AverageWorker struct{}

// Map passes through records whose value is numeric and drops the rest.
func (w AverageWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(kv.Value), 64); err == nil {
		emit(execreduce.KeyValue{Key: kv.Key, Value: strings.TrimSpace(kv.Value)})
	}
	return nil
}

// Reduce computes the mean of the key's values with two decimals.
func (w AverageWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	var (
		sum   float64
		count int
	)
	for _, v := range values {
		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		sum += val
		count++
	}

	if count > 0 {
		emit(execreduce.KeyValue{Key: key, Value: strconv.FormatFloat(sum/float64(count), 'f', 2, 64)})
	}
	return nil
}

func (w AverageWorker) Description() string {
	return "Calculates average numeric value per key"
}
