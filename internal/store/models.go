package store

import "time"

// PayloadRecord is the batch metadata of one export
type PayloadRecord struct {
	ID         int64
	Version    int32
	BatchSize  int32
	BatchIndex int32
	BatchID    int64
	ExportedAt time.Time
}

// Account is one exported credential row
type Account struct {
	Position  int64 // order of first insertion
	Name      string
	Issuer    string
	Type      string // "TOTP", "HOTP", "UNSPECIFIED"
	Value     string // base32 secret or provisioning URL
	PayloadID int64
}
