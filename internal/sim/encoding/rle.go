package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes a row of map symbols into base64(varint pairs).
// The pairs are (symbol, run_len) repeated.
func EncodeRLE(syms []byte) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(syms) {
		b := syms[i]
		run := 1
		for j := i + 1; j < len(syms) && syms[j] == b; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// MaxDecodedLen bounds a decoded row so corrupt input fails instead of
// allocating without limit.
const MaxDecodedLen = 1 << 20

func DecodeRLE(b64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []byte
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFF {
			return nil, fmt.Errorf("symbol too large: %d", b)
		}
		if run == 0 {
			return nil, fmt.Errorf("zero run at %d", i)
		}
		if run > uint64(MaxDecodedLen-len(out)) {
			return nil, fmt.Errorf("run %d at %d exceeds %d symbols", run, i, MaxDecodedLen)
		}
		out = append(out, bytes.Repeat([]byte{byte(b)}, int(run))...)
	}
	return out, nil
}
