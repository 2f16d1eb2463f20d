package dashboard

import (
	"github.com/homeplanner/homeplanner/internal/model"
)

// Bucket is one histogram bar.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Histogram counts tasks per known enum value. Tasks with any other value
// are left out of the buckets and tallied in Unclassified.
type Histogram struct {
	Buckets      []Bucket `json:"buckets"`
	Unclassified int      `json:"unclassified"`
}

// Count returns the count for key, or 0 for an unknown key.
func (h Histogram) Count(key string) int {
	for _, b := range h.Buckets {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}

// Total sums the known buckets.
func (h Histogram) Total() int {
	n := 0
	for _, b := range h.Buckets {
		n += b.Count
	}
	return n
}

// PriorityHistogram counts tasks by priority.
func PriorityHistogram(tasks []model.Task) Histogram {
	keys := make([]string, len(model.Priorities))
	for i, p := range model.Priorities {
		keys[i] = string(p)
	}
	return histogram(keys, tasks, func(t model.Task) string { return string(t.Priority) })
}

// StatusHistogram counts tasks by status.
func StatusHistogram(tasks []model.Task) Histogram {
	keys := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		keys[i] = string(s)
	}
	return histogram(keys, tasks, func(t model.Task) string { return string(t.Status) })
}

func histogram(keys []string, tasks []model.Task, keyOf func(model.Task) string) Histogram {
	h := Histogram{Buckets: make([]Bucket, len(keys))}
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		h.Buckets[i] = Bucket{Key: k}
		index[k] = i
	}

	for _, t := range tasks {
		if i, ok := index[keyOf(t)]; ok {
			h.Buckets[i].Count++
		} else {
			h.Unclassified++
		}
	}
	return h
}
