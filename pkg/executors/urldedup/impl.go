package urldedup

import (
	"net/url"
	"strconv"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// URLDedupWorker deduplicates URLs per domain.
// Input: one URL per record value.
// Output: (domain, unique_url_count)
type URLDedupWorker struct{}

// Map extracts the domain from the URL and emits (domain, url)
func (w URLDedupWorker) Map(kv execreduce.KeyValue, emit execreduce.Emitter) error {
	line := strings.TrimSpace(kv.Value)
	if line == "" {
		return nil
	}

	u, err := url.Parse(line)
	if err != nil || u.Host == "" {
		return nil // Skip invalid URLs
	}

	emit(execreduce.KeyValue{Key: u.Host, Value: line})
	return nil
}

// Reduce counts the distinct URLs of a domain
func (w URLDedupWorker) Reduce(key string, values []string, emit execreduce.Emitter) error {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	emit(execreduce.KeyValue{Key: key, Value: strconv.Itoa(len(seen))})
	return nil
}

func (w URLDedupWorker) Description() string {
	return "Deduplicates URLs per domain and counts unique URLs"
}
