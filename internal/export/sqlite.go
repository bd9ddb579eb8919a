package export

import (
	"fmt"
	"time"

	"github.com/BadgerOps/otpmigrate/internal/migration"
	"github.com/BadgerOps/otpmigrate/internal/store"
)

// writeSQLite stores the batch metadata and the filtered accounts in a new
// database at path.
func (e *Exporter) writeSQLite(path string, p *migration.Payload, opts Options) error {
	st, err := store.New(path, e.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}

	if err := fillStore(st, p, Entries(p, opts)); err != nil {
		st.Close()
		return err
	}

	if err := st.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}
	return nil
}

func fillStore(st *store.Store, p *migration.Payload, entries []Entry) error {
	rec := &store.PayloadRecord{
		Version:    p.Version,
		BatchSize:  p.BatchSize,
		BatchIndex: p.BatchIndex,
		BatchID:    p.BatchID,
		ExportedAt: time.Now().UTC(),
	}
	if err := st.SavePayload(rec); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	for _, entry := range entries {
		acc := &store.Account{
			Name:      entry.Name,
			Issuer:    entry.Issuer,
			Type:      entry.Type.String(),
			Value:     entry.Value,
			PayloadID: rec.ID,
		}
		if err := st.UpsertAccount(acc); err != nil {
			return fmt.Errorf("%w: %w", ErrSerialize, err)
		}
	}
	return nil
}
