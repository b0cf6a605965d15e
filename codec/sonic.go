package codec

import "github.com/bytedance/sonic"

// Sonic is a JSON codec backed by bytedance/sonic. Output is wire-compatible
// with JSON, so entries written by either codec decode with the other.
// The zero value uses sonic.ConfigStd (sorted map keys, HTML escaping).
type Sonic[V any] struct {
	API sonic.API
}

var _ Codec[struct{}] = Sonic[struct{}]{}

func (c Sonic[V]) api() sonic.API {
	if c.API == nil {
		return sonic.ConfigStd
	}
	return c.API
}

func (c Sonic[V]) Encode(v V) ([]byte, error) { return c.api().Marshal(v) }
func (c Sonic[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.api().Unmarshal(b, &v)
	return v, err
}
