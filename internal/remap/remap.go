// Package remap rewrites field names inside nested query documents.
package remap

// Remap renames every key of doc found in table and replaces every string value
// equal to a table key with its mapped value. Nested maps, maps inside lists and
// plain string list elements are rewritten the same way. doc is mutated in place
// and returned.
//
// Keys inserted by a rename are not visited again, so a table whose values are
// not also keys gives the same result when applied twice.
func Remap(doc map[string]interface{}, table map[string]string) map[string]interface{} {
	if doc == nil || len(table) == 0 {
		return doc
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}

	for _, k := range keys {
		v := rewriteValue(doc[k], table)
		if renamed, ok := table[k]; ok {
			delete(doc, k)
			doc[renamed] = v
			continue
		}
		doc[k] = v
	}
	return doc
}

func rewriteValue(v interface{}, table map[string]string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return Remap(val, table)
	case []interface{}:
		for i, item := range val {
			val[i] = rewriteValue(item, table)
		}
		return val
	case string:
		if renamed, ok := table[val]; ok {
			return renamed
		}
		return val
	default:
		return v
	}
}
