// Package codec (de)serializes memoized values to the byte payloads
// backends store. Backends are byte-transparent; the codec is the only
// layer that knows a value's concrete type.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
