package dataset

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// snapshotVersion is bumped when the snapshot layout changes.
const snapshotVersion = 1

// snapshot is the serialized form of a previously loaded table.
type snapshot struct {
	Version int
	Table   Table
}

// WriteSnapshot serializes a table so it can be re-uploaded later as a
// .pkl file. Only deployments that enable Loader.AllowSnapshots will
// accept the result back.
func WriteSnapshot(t *Table, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(snapshot{Version: snapshotVersion, Table: *t}); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// loadSnapshot deserializes a table snapshot. The bytes are trusted to
// come from WriteSnapshot; the loader gate in Load enforces that policy.
func loadSnapshot(data []byte) (*Table, error) {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, parseFailed("pkl", err)
	}
	if snap.Version != snapshotVersion {
		return nil, parseFailed("pkl", fmt.Errorf("unsupported snapshot version %d", snap.Version))
	}
	return &snap.Table, nil
}
