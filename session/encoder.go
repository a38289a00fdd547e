package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionV1 = 1

// Encode serializes a Record: version, issuedAt, then length-prefixed member id and role.
func Encode(r *Record) ([]byte, error) {
	if r.MemberID == "" {
		return nil, errors.New("memberID required")
	}
	if len(r.MemberID) > 255 {
		return nil, errors.New("memberID too long")
	}
	if len(r.Role) > 255 {
		return nil, errors.New("role too long")
	}

	var buf bytes.Buffer
	buf.Grow(1 + 8 + 2 + len(r.MemberID) + len(r.Role))

	buf.WriteByte(recordFormatVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(len(r.MemberID)))
	buf.WriteString(r.MemberID)
	buf.WriteByte(byte(len(r.Role)))
	buf.WriteString(r.Role)

	return buf.Bytes(), nil
}

// Decode parses bytes written by Encode.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionV1 {
		return nil, errors.New("invalid session record version")
	}

	r := &Record{}
	if err := binary.Read(reader, binary.BigEndian, &r.IssuedAt); err != nil {
		return nil, err
	}

	memberID, err := readShortString(reader)
	if err != nil {
		return nil, err
	}
	if memberID == "" {
		return nil, errors.New("session record missing memberID")
	}
	r.MemberID = memberID

	if r.Role, err = readShortString(reader); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in session record")
	}
	return r, nil
}

func readShortString(reader *bytes.Reader) (string, error) {
	n, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(reader, b); err != nil {
		return "", err
	}
	return string(b), nil
}
