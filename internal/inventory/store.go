package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Snapshotter persists a full product snapshot somewhere outside the process.
type Snapshotter interface {
	SaveSnapshot(ctx context.Context, ps []Product) error
	LoadSnapshot(ctx context.Context) ([]Product, error)
	Ping(ctx context.Context) error
}

// Save writes every product to s, replacing what s held before.
func (inv *Inventory) Save(ctx context.Context, s Snapshotter) error {
	return s.SaveSnapshot(ctx, inv.List())
}

// Load reads a snapshot from s and merges it into the store: products in the
// snapshot overwrite entries with the same id, everything else is kept. The
// whole snapshot is decoded first, so a bad snapshot leaves the store
// unchanged.
func (inv *Inventory) Load(ctx context.Context, s Snapshotter) error {
	ps, err := s.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	inv.merge(ps)
	return nil
}

func (inv *Inventory) SaveToFile(path string) error {
	return inv.Save(context.Background(), NewFileStore(path))
}

func (inv *Inventory) LoadFromFile(path string) error {
	return inv.Load(context.Background(), NewFileStore(path))
}

// encodeDocument renders ps as one JSON object keyed by product id, in the
// order given. Products JSON cannot represent, such as a NaN price, fail with
// ErrEncode.
func encodeDocument(ps []Product) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.ID)
		if err != nil {
			return nil, encodeErr(p.ID, err)
		}
		rec, err := json.Marshal(p)
		if err != nil {
			return nil, encodeErr(p.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(rec)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// decodeDocument parses a snapshot document, keeping the order of its
// entries. Records with an unknown or missing type are skipped.
func decodeDocument(r io.Reader) ([]Product, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, parseErrorf("%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, parseErrorf("expected object at top level")
	}

	out := make([]Product, 0, 16)
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, parseErrorf("%v", err)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, parseErrorf("%v", err)
		}

		p, ok, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, parseErrorf("%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, parseErrorf("extra data after json object")
	}
	return out, nil
}

func decodeRecord(raw []byte) (Product, bool, error) {
	var p Product
	err := p.UnmarshalJSON(raw)
	if errors.Is(err, errUnknownKind) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, parseErrorf("%v", err)
	}
	return p, true, nil
}
