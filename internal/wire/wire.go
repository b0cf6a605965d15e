package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("llmcache: corrupt entry")
	magic4     = [...]byte{'L', 'L', 'M', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | scheme(1) | vlen(u32 be) | payload(vlen)
//
// scheme is the key scheme the entry was written under, so a value found in
// the wrong slot can be told apart from a genuine hit.
func Encode(scheme byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(scheme)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame strictly: trailing bytes are corruption.
func Decode(b []byte) (scheme byte, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	scheme = b[5]
	vlen := int(binary.BigEndian.Uint32(b[6:hdrLen]))
	if vlen < 0 || vlen != len(b)-hdrLen {
		return 0, nil, ErrCorrupt
	}
	return scheme, b[hdrLen:], nil
}
