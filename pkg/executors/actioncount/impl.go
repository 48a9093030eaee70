package actioncount

import (
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
	"pkg.jsn.cam/execreduce/pkg/executors/wordcount"
)

// ActionCountWorker counts user actions in "user_N did <action>" values.
type ActionCountWorker struct{}

// Map extracts the action (word after "did") from the value and emits (action, "1")
func (w ActionCountWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	words := strings.Fields(kv.Value)
	for i := range words {
		if words[i] == "did" && i+1 < len(words) {
			emit(execreduce.KeyValue{Key: words[i+1], Value: "1"})
			break
		}
	}

	return nil
}

// Reduce aggregates the counts for each action
func (w ActionCountWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	return wordcount.WordCountWorker{}.Reduce(key, values, emit)
}

func (w ActionCountWorker) Description() string {
	return "Counts how many times each user action (after 'did') occurs, ignoring users"
}
