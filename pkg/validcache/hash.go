package validcache

import (
	"fmt"
	"hash/fnv"
	"io"
	"sort"
)

// snapshotHash produces a stable content hash of a step data snapshot. Map
// keys are written in sorted order so two snapshots with the same content
// always collide, regardless of map iteration order.
func snapshotHash(data map[string]any) uint64 {
	h := fnv.New64a()
	writeMap(h, data)
	return h.Sum64()
}

func writeMap(w io.Writer, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		io.WriteString(w, k)
		io.WriteString(w, "=")
		writeValue(w, m[k])
		io.WriteString(w, ";")
	}
}

func writeValue(w io.Writer, v any) {
	switch val := v.(type) {
	case nil:
		io.WriteString(w, "<nil>")
	case map[string]any:
		io.WriteString(w, "{")
		writeMap(w, val)
		io.WriteString(w, "}")
	case []map[string]any:
		io.WriteString(w, "[")
		for _, item := range val {
			writeValue(w, item)
			io.WriteString(w, ",")
		}
		io.WriteString(w, "]")
	case []any:
		io.WriteString(w, "[")
		for _, item := range val {
			writeValue(w, item)
			io.WriteString(w, ",")
		}
		io.WriteString(w, "]")
	case []string:
		io.WriteString(w, "[")
		for _, item := range val {
			io.WriteString(w, item)
			io.WriteString(w, ",")
		}
		io.WriteString(w, "]")
	default:
		fmt.Fprintf(w, "%v", val)
	}
}
