package fragment

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/ragfuse/ragfuse"
)

// Reserved hash field names; everything else is fragment metadata.
const (
	fieldText   = "__text"
	fieldVector = "__vector"
)

// buildHashFields converts a fragment into a flat map[string]string for HSET.
func buildHashFields(f *ragfuse.Fragment) map[string]string {
	m := make(map[string]string, 2+len(f.Metadata))
	m[fieldText] = f.Text
	m[fieldVector] = vectorToBytes(f.Embedding)
	for k, v := range f.Metadata {
		m[k] = v
	}
	return m
}

// parseHashFields converts a flat hash map back into a fragment.
func parseHashFields(id string, m map[string]string) ragfuse.Fragment {
	f := ragfuse.Fragment{ID: id}
	for k, v := range m {
		switch k {
		case fieldText:
			f.Text = v
		case fieldVector:
			f.Embedding = bytesToVector(v)
		default:
			if f.Metadata == nil {
				f.Metadata = make(map[string]string)
			}
			f.Metadata[k] = v
		}
	}
	return f
}

// fragmentKey builds the storage key for a fragment ID.
func fragmentKey(id string) string {
	return keyPrefix + id
}

// idFromKey recovers the fragment ID from a storage key.
func idFromKey(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
