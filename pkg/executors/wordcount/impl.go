package wordcount

import (
	"fmt"
	"strconv"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// WordCountWorker counts words in record values.
type WordCountWorker struct{}

// Map ignores the key, splits the value into words and emits (word, "1").
func (w WordCountWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	for _, word := range strings.Fields(kv.Value) {
		emit(execreduce.KeyValue{Key: word, Value: "1"})
	}

	return nil
}

// Reduce sums the counts of a word. Counts may already be partial sums.
func (w WordCountWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	var sum uint64
	for _, v := range values {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("count for %q: %w", key, err)
		}
		sum += n
	}

	emit(execreduce.KeyValue{Key: key, Value: strconv.FormatUint(sum, 10)})
	return nil
}

func (w WordCountWorker) Description() string {
	return "Counts occurrences of each word in the record values"
}
