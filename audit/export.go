package audit

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/entropool/entropool/chainid"
)

// ExportVersion is the current export index schema version.
const ExportVersion = 1

type exportIndex struct {
	Version int    `json:"version"`
	Entries int    `json:"entries"`
	Head    string `json:"head,omitempty"`
}

var epoch0 = time.Unix(0, 0).UTC()

// Export writes the trail at path as a deterministic TAR archive for
// offline review: one canonical-CBOR file per entry, named by sequence
// number, plus an index.json recording the chain head. Identical trails
// export to identical bytes.
func Export(w io.Writer, path string) error {
	entries, err := ReadAll(path)
	if err != nil {
		return err
	}
	if _, err := verifyEntries(entries); err != nil {
		return err
	}

	tw := tar.NewWriter(w)
	head := ""
	for _, e := range entries {
		enc, err := entryEncMode.Marshal(e)
		if err != nil {
			_ = tw.Close()
			return err
		}
		head = chainid.String(enc)
		name := fmt.Sprintf("entries/%08d.cbor", e.Seq)
		if err := writeExportFile(tw, name, enc); err != nil {
			_ = tw.Close()
			return err
		}
	}

	idx, err := json.Marshal(exportIndex{Version: ExportVersion, Entries: len(entries), Head: head})
	if err != nil {
		_ = tw.Close()
		return err
	}
	if err := writeExportFile(tw, "index.json", append(idx, '\n')); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}

// VerifyExport reads an exported archive and checks the entry chain and
// the index head against the entry bytes.
func VerifyExport(r io.Reader) error {
	tr := tar.NewReader(r)

	var entries []Entry
	var idx *exportIndex
	lastSeq := uint64(0)
	head := ""

	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if h.Typeflag != tar.TypeReg {
			return fmt.Errorf("audit: unexpected archive entry type for %s", h.Name)
		}
		payload, err := io.ReadAll(tr)
		if err != nil {
			return err
		}

		switch {
		case h.Name == "index.json":
			var parsed exportIndex
			if err := json.Unmarshal(payload, &parsed); err != nil {
				return fmt.Errorf("audit: malformed index.json: %w", err)
			}
			idx = &parsed
		case strings.HasPrefix(h.Name, "entries/"):
			got, err := decodeEntries(bytes.NewReader(payload))
			if err != nil {
				return err
			}
			if len(got) != 1 {
				return fmt.Errorf("audit: %s holds %d entries, want 1", h.Name, len(got))
			}
			e := got[0]
			if want := fmt.Sprintf("entries/%08d.cbor", e.Seq); h.Name != want {
				return fmt.Errorf("audit: entry %d stored as %s", e.Seq, h.Name)
			}
			if e.Seq != lastSeq+1 {
				return fmt.Errorf("audit: entry %d out of order after %d", e.Seq, lastSeq)
			}
			lastSeq = e.Seq
			head = chainid.String(payload)
			entries = append(entries, e)
		default:
			return fmt.Errorf("audit: unknown archive entry %s", h.Name)
		}
	}

	if _, err := verifyEntries(entries); err != nil {
		return err
	}
	if idx == nil {
		return fmt.Errorf("audit: archive missing index.json")
	}
	if idx.Version != ExportVersion {
		return fmt.Errorf("audit: unsupported export version %d", idx.Version)
	}
	if idx.Entries != len(entries) {
		return fmt.Errorf("audit: index claims %d entries, archive holds %d", idx.Entries, len(entries))
	}
	if idx.Head != head {
		return fmt.Errorf("audit: index head does not match final entry")
	}
	return nil
}

func writeExportFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}
