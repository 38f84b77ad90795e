package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encodeVector packs a float32 vector into a little-endian blob. No length
// prefix; the length is derived from the blob size on decode.
func encodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// decodeVector unpacks a blob produced by encodeVector.
func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// docKey encodes a document ID as a big-endian key so bucket iteration
// follows insertion order.
func docKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func docKeyID(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}

// collDocKey builds the per-collection document index key. Collection IDs
// are UUID strings, so '/' never appears in the prefix.
func collDocKey(collID string, docID uint64) []byte {
	k := make([]byte, 0, len(collID)+9)
	k = append(k, collID...)
	k = append(k, '/')
	return append(k, docKey(docID)...)
}

func collDocPrefix(collID string) []byte {
	return []byte(collID + "/")
}

// postingKey scopes a term's postings to one collection.
func postingKey(collID, term string) []byte {
	return []byte(collID + "/" + term)
}
