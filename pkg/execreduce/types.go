package execreduce

// KeyValue is the unit of data moved between every stage of a job.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Size is the cost of a record for chunking purposes. Encoding overhead
// (separator and terminator) is not counted.
func (kv KeyValue) Size() int64 {
	return int64(len(kv.Key) + len(kv.Value))
}

type Emitter func(KeyValue)

// Mapper transforms one input record into any number of output records.
type Mapper interface {
	Map(kv KeyValue, emit Emitter) error
}

// Reducer folds every value of one key into any number of output records.
type Reducer interface {
	Reduce(key string, values []string, emit Emitter) error
}

// Executor is a built-in worker program that can run either phase.
type Executor interface {
	Mapper
	Reducer
	Description() string
}
