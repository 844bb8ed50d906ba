// Copyright 2026 The ksql Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package encoding provides an order-preserving byte encoding for
// materialized-table keys: for any two keys encoded column by column,
// bytes.Compare on the encodings agrees with the logical column-wise order.
// Only ascending order is supported; pull queries scan in ascending key
// order and nothing here serves descending indexes.
//
// The first byte of every encoded value is a type marker. NULL sorts before
// all other values. A key column holds values of a single type (plus NULL),
// so the relative order of the type markers is arbitrary; they only need to
// partition the space. Integers use a length-prefixed variable-width form,
// floats an IEEE 754 bit manipulation, and byte strings an escape-based form
// that self-terminates.
package encoding

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
)

const (
	encodedNull = 0x00
	// A marker greater than NULL but lower than any other value. Not
	// produced for stored keys; reserved for span boundaries.
	encodedNotNull = 0x01

	floatNaN  = encodedNotNull + 1
	floatNeg  = floatNaN + 1
	floatZero = floatNeg + 1
	floatPos  = floatZero + 1

	bytesMarker byte = 0x12

	// IntMin is chosen such that the range of int tags does not overlap the
	// ascii character set that is frequently used in testing.
	IntMin      = 0x80
	intMaxWidth = 8
	intZero     = IntMin + intMaxWidth
	intSmall    = IntMax - intZero - intMaxWidth // 109
	// IntMax is the maximum int tag value.
	IntMax = 0xfd
)

// EncodeNull encodes a NULL value. The encoded bytes are appended to the
// supplied buffer and the final buffer is returned. The encoding is
// guaranteed not to be a prefix of any EncodeVarint, EncodeFloat or
// EncodeBytes encoding.
func EncodeNull(b []byte) []byte {
	return append(b, encodedNull)
}

// EncodeVarint encodes the int64 value using a variable length
// (length-prefixed) representation. The length is encoded as a single byte:
// 8-numBytes for negative values, 8+numBytes for positive values, with small
// non-negative values folded directly into the length byte. The encoded
// bytes are appended to the supplied buffer and the final buffer is
// returned.
func EncodeVarint(b []byte, v int64) []byte {
	if v < 0 {
		switch {
		case v >= -0xff:
			return append(b, IntMin+7, byte(v))
		case v >= -0xffff:
			return append(b, IntMin+6, byte(v>>8), byte(v))
		case v >= -0xffffff:
			return append(b, IntMin+5, byte(v>>16), byte(v>>8), byte(v))
		case v >= -0xffffffff:
			return append(b, IntMin+4, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		case v >= -0xffffffffff:
			return append(b, IntMin+3, byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8),
				byte(v))
		case v >= -0xffffffffffff:
			return append(b, IntMin+2, byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16),
				byte(v>>8), byte(v))
		case v >= -0xffffffffffffff:
			return append(b, IntMin+1, byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24),
				byte(v>>16), byte(v>>8), byte(v))
		default:
			return append(b, IntMin, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
				byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		}
	}
	return encodeUvarint(b, uint64(v))
}

func encodeUvarint(b []byte, v uint64) []byte {
	switch {
	case v <= intSmall:
		return append(b, intZero+byte(v))
	case v <= 0xff:
		return append(b, IntMax-7, byte(v))
	case v <= 0xffff:
		return append(b, IntMax-6, byte(v>>8), byte(v))
	case v <= 0xffffff:
		return append(b, IntMax-5, byte(v>>16), byte(v>>8), byte(v))
	case v <= 0xffffffff:
		return append(b, IntMax-4, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	case v <= 0xffffffffff:
		return append(b, IntMax-3, byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8),
			byte(v))
	case v <= 0xffffffffffff:
		return append(b, IntMax-2, byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16),
			byte(v>>8), byte(v))
	case v <= 0xffffffffffffff:
		return append(b, IntMax-1, byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24),
			byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(b, IntMax, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
			byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// DecodeVarint decodes a value encoded by EncodeVarint. The remainder of the
// input buffer and the decoded value are returned.
func DecodeVarint(b []byte) ([]byte, int64, error) {
	if len(b) == 0 {
		return nil, 0, errors.Errorf("insufficient bytes to decode varint value")
	}
	length := int(b[0]) - intZero
	if length < 0 {
		length = -length
		rem := b[1:]
		if len(rem) < length {
			return nil, 0, errors.Errorf("insufficient bytes to decode varint value: %x", rem)
		}
		var v int64
		// Build the ones-complement as a positive number, then complement
		// again to arrive at the negative value.
		for _, t := range rem[:length] {
			v = (v << 8) | int64(^t)
		}
		return rem[length:], ^v, nil
	}
	rem, v, err := decodeUvarint(b)
	if err != nil {
		return rem, 0, err
	}
	if v > math.MaxInt64 {
		return nil, 0, errors.Errorf("varint %d overflows int64", v)
	}
	return rem, int64(v), nil
}

func decodeUvarint(b []byte) ([]byte, uint64, error) {
	if len(b) == 0 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uvarint value")
	}
	length := int(b[0]) - intZero
	b = b[1:] // skip length byte
	if length <= intSmall {
		return b, uint64(length), nil
	}
	length -= intSmall
	if length < 0 || length > intMaxWidth {
		return nil, 0, errors.Errorf("invalid uvarint length of %d", length)
	} else if len(b) < length {
		return nil, 0, errors.Errorf("insufficient bytes to decode uvarint value: %x", b)
	}
	var v uint64
	for _, t := range b[:length] {
		v = (v << 8) | uint64(t)
	}
	return b[length:], v, nil
}

// EncodeFloat encodes the float64 value using an ordering-friendly form: a
// marker separating NaN, negatives, zero and positives, followed for nonzero
// finite values by the (sign-adjusted) IEEE 754 bits big-endian. NaN sorts
// before all other values. The encoded bytes are appended to the supplied
// buffer and the final buffer is returned.
func EncodeFloat(b []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(b, floatNaN)
	case f == 0:
		return append(b, floatZero)
	}
	u := math.Float64bits(f)
	if u&(1<<63) != 0 {
		u = ^u // negative: complement so larger magnitudes sort earlier
		b = append(b, floatNeg)
	} else {
		b = append(b, floatPos)
	}
	return append(b,
		byte(u>>56), byte(u>>48), byte(u>>40), byte(u>>32),
		byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

// DecodeFloat decodes a value encoded by EncodeFloat. The remainder of the
// input buffer and the decoded value are returned.
func DecodeFloat(b []byte) ([]byte, float64, error) {
	if len(b) == 0 {
		return nil, 0, errors.Errorf("insufficient bytes to decode float value")
	}
	m := b[0]
	b = b[1:]
	switch m {
	case floatNaN:
		return b, math.NaN(), nil
	case floatZero:
		return b, 0, nil
	case floatNeg, floatPos:
		if len(b) < 8 {
			return nil, 0, errors.Errorf("insufficient bytes to decode float value: %x", b)
		}
		u := (uint64(b[0]) << 56) | (uint64(b[1]) << 48) |
			(uint64(b[2]) << 40) | (uint64(b[3]) << 32) |
			(uint64(b[4]) << 24) | (uint64(b[5]) << 16) |
			(uint64(b[6]) << 8) | uint64(b[7])
		if m == floatNeg {
			u = ^u
		}
		return b[8:], math.Float64frombits(u), nil
	default:
		return nil, 0, errors.Errorf("unknown float marker %#x", m)
	}
}

const (
	// <term>  -> \x00\x01
	// \x00    -> \x00\xff
	escape      byte = 0x00
	escapedTerm byte = 0x01
	escaped00   byte = 0xff
)

// EncodeBytes encodes the []byte value using an escape-based encoding. The
// encoded value is terminated with the sequence "\x00\x01" which is
// guaranteed to not occur elsewhere in the encoded value. The encoded bytes
// are appended to the supplied buffer and the resulting buffer is returned.
func EncodeBytes(b []byte, data []byte) []byte {
	b = append(b, bytesMarker)
	for {
		// IndexByte is implemented by the go runtime in assembly and is
		// much faster than looping over the bytes in the slice.
		i := bytes.IndexByte(data, escape)
		if i == -1 {
			break
		}
		b = append(b, data[:i]...)
		b = append(b, escape, escaped00)
		data = data[i+1:]
	}
	b = append(b, data...)
	return append(b, escape, escapedTerm)
}

// DecodeBytes decodes a []byte value from the input buffer which was encoded
// by EncodeBytes. The decoded bytes are appended to r, which may be nil. The
// remainder of the input buffer and the decoded []byte are returned.
func DecodeBytes(b []byte, r []byte) ([]byte, []byte, error) {
	if len(b) == 0 || b[0] != bytesMarker {
		return nil, nil, errors.Errorf("did not find marker %#x in buffer %#x", bytesMarker, b)
	}
	b = b[1:]
	for {
		i := bytes.IndexByte(b, escape)
		if i == -1 {
			return nil, nil, errors.Errorf("did not find terminator %#x in buffer %#x", escape, b)
		}
		if i+1 >= len(b) {
			return nil, nil, errors.Errorf("malformed escape in buffer %#x", b)
		}
		v := b[i+1]
		if v == escapedTerm {
			if r == nil {
				r = b[:i]
			} else {
				r = append(r, b[:i]...)
			}
			return b[i+2:], r, nil
		}
		if v != escaped00 {
			return nil, nil, errors.Errorf("unknown escape sequence: %#x %#x", escape, v)
		}
		r = append(r, b[:i]...)
		r = append(r, escape)
		b = b[i+2:]
	}
}

// EncodeString encodes the string value using the bytes encoding. The
// encoded bytes are appended to the supplied buffer and the resulting buffer
// is returned. The unsafe conversion avoids copying the string; this is
// kosher because EncodeBytes does not retain a reference to the data it
// encodes.
func EncodeString(b []byte, s string) []byte {
	if len(s) == 0 {
		return EncodeBytes(b, nil)
	}
	return EncodeBytes(b, unsafe.Slice(unsafe.StringData(s), len(s)))
}

// DecodeString decodes a string value from the input buffer which was
// encoded by EncodeString or EncodeBytes. The r []byte is used as a
// temporary buffer to avoid memory allocations. The remainder of the input
// buffer and the decoded string are returned.
func DecodeString(b []byte, r []byte) ([]byte, string, error) {
	b, r, err := DecodeBytes(b, r)
	return b, string(r), err
}

// Type represents the type of a value encoded by
// Encode{Null,Varint,Float,Bytes,String}.
type Type int

// Type values.
const (
	Unknown Type = iota
	Null
	NotNull
	Int
	Float
	Bytes
)

// PeekType peeks at the type of the value encoded at the start of b.
func PeekType(b []byte) Type {
	if len(b) >= 1 {
		m := b[0]
		switch {
		case m == encodedNull:
			return Null
		case m == encodedNotNull:
			return NotNull
		case m == bytesMarker:
			return Bytes
		case m >= IntMin && m <= IntMax:
			return Int
		case m >= floatNaN && m <= floatPos:
			return Float
		}
	}
	return Unknown
}

// EncodeKeyValue encodes a single key-column value with the encoding
// matching its runtime type and appends it to b. Booleans encode as varint 0
// or 1. A value of a type that cannot appear in a key is an assertion
// failure: key shapes are fixed at table creation and the upstream planner
// never produces anything else.
func EncodeKeyValue(b []byte, v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return EncodeNull(b), nil
	case bool:
		var x int64
		if t {
			x = 1
		}
		return EncodeVarint(b, x), nil
	case int:
		return EncodeVarint(b, int64(t)), nil
	case int32:
		return EncodeVarint(b, int64(t)), nil
	case int64:
		return EncodeVarint(b, t), nil
	case float64:
		return EncodeFloat(b, t), nil
	case string:
		return EncodeString(b, t), nil
	case []byte:
		return EncodeBytes(b, t), nil
	}
	return nil, errors.AssertionFailedf("unable to encode key value of type %T", v)
}

// DecodeKeyValue decodes the first value in b that was encoded by
// EncodeKeyValue. Integers decode as int64 and byte strings as string; the
// distinctions lost by EncodeKeyValue (bool versus int, string versus bytes)
// are not recoverable. The remainder of the input buffer and the decoded
// value are returned.
func DecodeKeyValue(b []byte) ([]byte, any, error) {
	switch PeekType(b) {
	case Null:
		return b[1:], nil, nil
	case Int:
		rem, v, err := DecodeVarint(b)
		return rem, v, err
	case Float:
		rem, v, err := DecodeFloat(b)
		return rem, v, err
	case Bytes:
		rem, v, err := DecodeString(b, nil)
		return rem, v, err
	}
	return nil, nil, errors.Errorf("unknown encoding prefix in buffer %#x", b)
}

// PrettyKey renders an encoded key as /val1/val2 for debugging output.
// An empty key renders as "/". A suffix that does not decode renders as
// "/???" and ends the output.
func PrettyKey(b []byte) string {
	if len(b) == 0 {
		return "/"
	}
	var sb strings.Builder
	for len(b) > 0 {
		rem, v, err := DecodeKeyValue(b)
		if err != nil {
			sb.WriteString("/???")
			break
		}
		b = rem
		switch t := v.(type) {
		case string:
			fmt.Fprintf(&sb, "/%q", t)
		default:
			fmt.Fprintf(&sb, "/%v", t)
		}
	}
	return sb.String()
}
