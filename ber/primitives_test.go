package ber

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeLengthRoundTrip(t *testing.T) {
	cases := []int{0, 1, 127, 128, 255, 256, 65535, 65536, 1<<21 - 1}
	for _, n := range cases {
		enc := EncodeLength(n)
		got, consumed, err := DecodeLength(enc)
		if err != nil {
			t.Fatalf("DecodeLength(%x) for n=%d: %v", enc, n, err)
		}
		if got != n {
			t.Fatalf("round-trip mismatch: encoded %d, decoded %d", n, got)
		}
		if consumed != len(enc) {
			t.Fatalf("consumed %d bytes, encoding is %d bytes", consumed, len(enc))
		}
	}
}

func TestEncodeLengthShortForm(t *testing.T) {
	if got := EncodeLength(127); !bytes.Equal(got, []byte{0x7F}) {
		t.Fatalf("want short form 0x7F, got %x", got)
	}
}

func TestEncodeLengthLongForm(t *testing.T) {
	got := EncodeLength(128)
	want := []byte{0x81, 0x80}
	if !bytes.Equal(got, want) {
		t.Fatalf("want %x, got %x", want, got)
	}
}

func TestDecodeLengthRejectsExtensionByte(t *testing.T) {
	_, _, err := DecodeLength([]byte{0xFF})
	if err != ErrLengthExtensionReserved {
		t.Fatalf("want ErrLengthExtensionReserved, got %v", err)
	}
}

func TestDecodeLengthRejectsIndefinite(t *testing.T) {
	_, _, err := DecodeLength([]byte{0x80})
	if err != ErrIndefiniteLength {
		t.Fatalf("want ErrIndefiniteLength, got %v", err)
	}
}

func TestDecodeLengthRejectsOverflow(t *testing.T) {
	_, _, err := DecodeLength([]byte{0x85, 1, 2, 3, 4, 5})
	if err != ErrLengthOverflow {
		t.Fatalf("want ErrLengthOverflow, got %v", err)
	}
}

func TestDecodeBoolean(t *testing.T) {
	tru, err := DecodeBoolean([]byte{0xFF})
	if err != nil || !tru {
		t.Fatalf("want true, got %v err=%v", tru, err)
	}
	fls, err := DecodeBoolean([]byte{0x00})
	if err != nil || fls {
		t.Fatalf("want false, got %v err=%v", fls, err)
	}
	if _, err := DecodeBoolean([]byte{}); err != ErrInvalidBoolean {
		t.Fatalf("want ErrInvalidBoolean, got %v", err)
	}
}

func TestDecodeInteger(t *testing.T) {
	cases := []struct {
		in   []byte
		want int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 127},
		{[]byte{0x00, 0x80}, 128},
		{[]byte{0xFF}, -1},
		{[]byte{0xFF, 0x7F}, -129},
	}
	for _, c := range cases {
		got, err := DecodeInteger(c.in)
		if err != nil {
			t.Fatalf("DecodeInteger(%x): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("DecodeInteger(%x) = %d, want %d", c.in, got, c.want)
		}
	}
}
