package executors

import (
	"fmt"
	"slices"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
	"pkg.jsn.cam/execreduce/pkg/executors/actioncount"
	"pkg.jsn.cam/execreduce/pkg/executors/average"
	"pkg.jsn.cam/execreduce/pkg/executors/maxvalue"
	"pkg.jsn.cam/execreduce/pkg/executors/titleindex"
	"pkg.jsn.cam/execreduce/pkg/executors/urldedup"
	"pkg.jsn.cam/execreduce/pkg/executors/wordcount"
)

var Executors = map[string]execreduce.Executor{
	"wordcount":   wordcount.WordCountWorker{},
	"actioncount": actioncount.ActionCountWorker{},
	"maxvalue":    maxvalue.MaxValueWorker{},
	"average":     average.AverageWorker{},
	"urldedup":    urldedup.URLDedupWorker{},
	"titleindex":  titleindex.TitleIndexWorker{},
}

func IsValidExecutor(name string) bool {
	_, exists := Executors[name]
	return exists
}

func GetExecutor(name string) (execreduce.Executor, error) {
	if worker, exists := Executors[name]; exists {
		return worker, nil
	}
	return nil, fmt.Errorf("%w: %s", execreduce.ErrUnknownExecutor, name)
}

// ListExecutors returns the registered names in sorted order.
func ListExecutors() []string {
	names := make([]string, 0, len(Executors))
	for name := range Executors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func GetDescription(name string) (string, error) {
	worker, err := GetExecutor(name)
	if err != nil {
		return "", err
	}
	return worker.Description(), nil
}
