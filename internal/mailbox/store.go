package mailbox

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// dumpRecord is the gob-encoded shape of a single owned mailbox, keyed by
// its hashed owner so a reload can repopulate Node.boxes without
// recomputing H(owner) for every entry.
type dumpRecord struct {
	Key     uint64
	Mailbox Mailbox
}

// Dump writes boxes to path as a binary (gob) serialization of the
// key->Mailbox map, per spec §6's graceful-shutdown fallback.
func Dump(path string, boxes map[uint64]*Mailbox) error {
	records := make([]dumpRecord, 0, len(boxes))
	for k, box := range boxes {
		records = append(records, dumpRecord{Key: k, Mailbox: *box})
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(records); err != nil {
		return errors.Wrap(err, "mailbox: encode dump")
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return errors.Wrapf(err, "mailbox: write dump %s", path)
	}
	return nil
}

// Load reads path (as written by Dump) back into a key->Mailbox map. A
// missing file is not an error: it reports (nil, nil), since most node
// startups have no prior dump to recover.
func Load(path string) (map[uint64]*Mailbox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "mailbox: read dump %s", path)
	}

	var records []dumpRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		return nil, errors.Wrapf(err, "mailbox: decode dump %s", path)
	}

	boxes := make(map[uint64]*Mailbox, len(records))
	for _, rec := range records {
		box := rec.Mailbox
		boxes[rec.Key] = &box
	}
	return boxes, nil
}
