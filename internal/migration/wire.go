package migration

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the MigrationPayload message.
const (
	payloadOtpParameters protowire.Number = 1
	payloadVersion       protowire.Number = 2
	payloadBatchSize     protowire.Number = 3
	payloadBatchIndex    protowire.Number = 4
	payloadBatchID       protowire.Number = 5
)

// Field numbers of the nested OtpParameters message.
const (
	paramSecret    protowire.Number = 1
	paramName      protowire.Number = 2
	paramIssuer    protowire.Number = 3
	paramAlgorithm protowire.Number = 4
	paramDigits    protowire.Number = 5
	paramType      protowire.Number = 6
	paramCounter   protowire.Number = 7
)

// fieldReader walks the fields of one encoded message.
type fieldReader struct {
	buf []byte
	typ protowire.Type
	num protowire.Number
}

func (r *fieldReader) more() bool {
	return len(r.buf) > 0
}

func (r *fieldReader) next() error {
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return fmt.Errorf("reading tag: %w", protowire.ParseError(n))
	}
	r.buf = r.buf[n:]
	r.num, r.typ = num, typ
	return nil
}

func (r *fieldReader) expect(name string, want protowire.Type) error {
	if r.typ != want {
		return fmt.Errorf("field %s (%d): unexpected wire type %d, want %d", name, r.num, r.typ, want)
	}
	return nil
}

func (r *fieldReader) varint(name string) (uint64, error) {
	if err := r.expect(name, protowire.VarintType); err != nil {
		return 0, err
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, fmt.Errorf("field %s: %w", name, protowire.ParseError(n))
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) bytes(name string) ([]byte, error) {
	if err := r.expect(name, protowire.BytesType); err != nil {
		return nil, err
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return nil, fmt.Errorf("field %s: %w", name, protowire.ParseError(n))
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) text(name string) (string, error) {
	v, err := r.bytes(name)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(v) {
		return "", fmt.Errorf("field %s: string is not valid UTF-8", name)
	}
	return string(v), nil
}

func (r *fieldReader) skip() error {
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.buf)
	if n < 0 {
		return fmt.Errorf("skipping field %d: %w", r.num, protowire.ParseError(n))
	}
	r.buf = r.buf[n:]
	return nil
}

// decodePayload decodes the binary MigrationPayload message.
func decodePayload(b []byte) (*Payload, error) {
	p := &Payload{}
	r := &fieldReader{buf: b}

	for r.more() {
		if err := r.next(); err != nil {
			return nil, err
		}

		var err error
		switch r.num {
		case payloadOtpParameters:
			var raw []byte
			if raw, err = r.bytes("otp_parameters"); err != nil {
				break
			}
			param, perr := decodeOtpParameter(raw)
			if perr != nil {
				return nil, fmt.Errorf("otp_parameters[%d]: %w", len(p.OtpParameters), perr)
			}
			p.OtpParameters = append(p.OtpParameters, param)
		case payloadVersion:
			var v uint64
			v, err = r.varint("version")
			p.Version = int32(v)
		case payloadBatchSize:
			var v uint64
			v, err = r.varint("batch_size")
			p.BatchSize = int32(v)
		case payloadBatchIndex:
			var v uint64
			v, err = r.varint("batch_index")
			p.BatchIndex = int32(v)
		case payloadBatchID:
			var v uint64
			v, err = r.varint("batch_id")
			p.BatchID = int64(v)
		default:
			err = r.skip()
		}
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func decodeOtpParameter(b []byte) (OtpParameter, error) {
	var param OtpParameter
	r := &fieldReader{buf: b}

	for r.more() {
		if err := r.next(); err != nil {
			return OtpParameter{}, err
		}

		var (
			v   uint64
			err error
		)
		switch r.num {
		case paramSecret:
			var secret []byte
			secret, err = r.bytes("secret")
			param.Secret = bytes.Clone(secret)
		case paramName:
			param.Name, err = r.text("name")
		case paramIssuer:
			param.Issuer, err = r.text("issuer")
		case paramAlgorithm:
			v, err = r.varint("algorithm")
			param.Algorithm = algorithmFromWire(v)
		case paramDigits:
			v, err = r.varint("digits")
			param.Digits = digitCountFromWire(v)
		case paramType:
			v, err = r.varint("type")
			param.Type = otpTypeFromWire(v)
		case paramCounter:
			v, err = r.varint("counter")
			param.Counter = int64(v)
		default:
			err = r.skip()
		}
		if err != nil {
			return OtpParameter{}, err
		}
	}

	return param, nil
}
