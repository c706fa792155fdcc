package mailpage

// ApplyRenames moves every field named in the grammar's synonym table to its
// canonical name. A value already stored under the target is overwritten.
func ApplyRenames(fields Metadata, g *Grammar) {
	for _, r := range g.renames {
		v, ok := fields[r.From]
		if !ok {
			continue
		}
		fields[r.To] = v
		delete(fields, r.From)
	}
}

// mergeMissing copies every key of src that dst does not already hold.
func mergeMissing(dst, src Metadata) {
	for k, v := range src {
		if _, exists := dst[k]; exists {
			continue
		}
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		dst[k] = v
	}
}
