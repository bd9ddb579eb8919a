// Package migration decodes authenticator "export accounts" URLs into
// credential records and derives standard provisioning data from them.
package migration

// Payload is one decoded export batch.
type Payload struct {
	Version    int32
	BatchSize  int32
	BatchIndex int32
	BatchID    int64

	// OtpParameters keeps the order of the export.
	OtpParameters []OtpParameter
}

// IsPartialBatch reports whether the export was split over several QR codes.
// Only the batch carried by this payload is available.
func (p *Payload) IsPartialBatch() bool {
	return p.BatchSize > 1
}

// Names returns the account names in export order.
func (p *Payload) Names() []string {
	names := make([]string, 0, len(p.OtpParameters))
	for _, param := range p.OtpParameters {
		names = append(names, param.Name)
	}
	return names
}

// OtpParameter is a single exported credential.
type OtpParameter struct {
	Secret    []byte
	Name      string
	Issuer    string
	Algorithm Algorithm
	Digits    DigitCount
	Type      OtpType
	Counter   int64 // meaningful for HOTP only
}

// Algorithm is the HMAC hash used to derive codes.
type Algorithm int32

const (
	AlgorithmUnspecified Algorithm = iota
	AlgorithmSHA1
	AlgorithmSHA256
	AlgorithmSHA512
	AlgorithmMD5
)

func algorithmFromWire(v uint64) Algorithm {
	switch v {
	case uint64(AlgorithmSHA1):
		return AlgorithmSHA1
	case uint64(AlgorithmSHA256):
		return AlgorithmSHA256
	case uint64(AlgorithmSHA512):
		return AlgorithmSHA512
	case uint64(AlgorithmMD5):
		return AlgorithmMD5
	default:
		return AlgorithmUnspecified
	}
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA1:
		return "SHA1"
	case AlgorithmSHA256:
		return "SHA256"
	case AlgorithmSHA512:
		return "SHA512"
	case AlgorithmMD5:
		return "MD5"
	default:
		return "UNSPECIFIED"
	}
}

// DigitCount is the length of generated codes.
type DigitCount int32

const (
	DigitCountUnspecified DigitCount = iota
	DigitCountSix
	DigitCountEight
)

func digitCountFromWire(v uint64) DigitCount {
	switch v {
	case uint64(DigitCountSix):
		return DigitCountSix
	case uint64(DigitCountEight):
		return DigitCountEight
	default:
		return DigitCountUnspecified
	}
}

func (d DigitCount) String() string {
	switch d {
	case DigitCountSix:
		return "SIX"
	case DigitCountEight:
		return "EIGHT"
	default:
		return "UNSPECIFIED"
	}
}

// OtpType distinguishes counter based from time based credentials.
type OtpType int32

const (
	OtpTypeUnspecified OtpType = iota
	OtpTypeHOTP
	OtpTypeTOTP
)

func otpTypeFromWire(v uint64) OtpType {
	switch v {
	case uint64(OtpTypeHOTP):
		return OtpTypeHOTP
	case uint64(OtpTypeTOTP):
		return OtpTypeTOTP
	default:
		return OtpTypeUnspecified
	}
}

func (t OtpType) String() string {
	switch t {
	case OtpTypeHOTP:
		return "HOTP"
	case OtpTypeTOTP:
		return "TOTP"
	default:
		return "UNSPECIFIED"
	}
}
