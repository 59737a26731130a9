package ingest

import "strings"

// CompressChunks greedily merges consecutive chunks until the combined text
// exceeds size, so the store does not fill up with one-line fragments.
func CompressChunks(chunks []string, size int) []string {
	var result []string
	var combined strings.Builder

	flush := func() {
		if combined.Len() == 0 {
			return
		}
		result = append(result, combined.String())
		combined.Reset()
	}

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if combined.Len() > 0 {
			combined.WriteByte('\n')
		}
		combined.WriteString(chunk)
		if combined.Len() > size {
			flush()
		}
	}
	flush()

	return result
}
