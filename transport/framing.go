package transport

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/haslersn/multipars/internal/xerrors"
)

// writeFrame writes v, gob-encoded and wrapped in a 4-byte big-endian
// length prefix, directly mirroring the teacher's own framing idiom
// (ckks/marshaler.go's gob usage, ring/prng.go's binary usage), per
// SPEC_FULL.md §4.9.
func writeFrame(w io.Writer, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return xerrors.NewTransportError("encoding frame", err)
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(buf.Len()))
	if _, err := w.Write(prefix[:]); err != nil {
		return xerrors.NewTransportError("writing frame length", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return xerrors.NewTransportError("writing frame body", err)
	}
	return nil
}

// readFrame reads one length-prefixed gob frame into v.
func readFrame(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return xerrors.NewTransportError("reading frame length", err)
	}
	n := binary.BigEndian.Uint32(prefix[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return xerrors.NewTransportError("reading frame body", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return xerrors.NewTransportError("decoding frame", err)
	}
	return nil
}

// idKey turns a hierarchical stream ID into a map key comparable by value.
func idKey(id []uint32) string {
	buf := make([]byte, 4*len(id))
	for i, v := range id {
		binary.BigEndian.PutUint32(buf[i*4:], v)
	}
	return string(buf)
}
