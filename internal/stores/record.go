package stores

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const credentialRecordVersionV1 = 1

// credentialRecord is the stored form of both verification codes and reset
// tokens: the secret-bearing or identity-bearing payload plus issue time.
type credentialRecord struct {
	IssuedAt int64
	Payload  string
}

func encodeCredentialRecord(record credentialRecord) ([]byte, error) {
	if len(record.Payload) > 65535 {
		return nil, errors.New("credential record payload too long")
	}

	var buf bytes.Buffer
	buf.Grow(1 + 8 + 2 + len(record.Payload))
	buf.WriteByte(credentialRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.Payload))); err != nil {
		return nil, err
	}
	buf.WriteString(record.Payload)

	return buf.Bytes(), nil
}

func decodeCredentialRecord(data []byte) (credentialRecord, error) {
	var record credentialRecord
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return record, err
	}
	if version != credentialRecordVersionV1 {
		return record, errors.New("invalid credential record version")
	}

	if err := binary.Read(reader, binary.BigEndian, &record.IssuedAt); err != nil {
		return record, err
	}

	var payloadLen uint16
	if err := binary.Read(reader, binary.BigEndian, &payloadLen); err != nil {
		return record, err
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return record, err
	}
	record.Payload = string(payload)

	if reader.Len() != 0 {
		return record, errors.New("trailing bytes in credential record")
	}
	return record, nil
}
