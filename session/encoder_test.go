package session

import "testing"

func TestEncodeDecode(t *testing.T) {
	in := &Record{MemberID: "12345", Role: "ADMIN", IssuedAt: 1700000000}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("decoded %+v, want %+v", out, in)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	data, err := Encode(&Record{MemberID: "1", Role: "USER"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cases := map[string][]byte{
		"empty":     nil,
		"version":   append([]byte{9}, data[1:]...),
		"truncated": data[:len(data)-2],
		"trailing":  append(append([]byte{}, data...), 0),
	}
	for name, in := range cases {
		if _, err := Decode(in); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestEncodeRejectsMissingMember(t *testing.T) {
	if _, err := Encode(&Record{Role: "USER"}); err == nil {
		t.Fatal("expected missing member id to be rejected")
	}
}
