package derive

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entropool/entropool/chainid"
	"github.com/entropool/entropool/label"
	"github.com/entropool/entropool/pool"
)

// FileStore keeps one salt at rest: a 0600 file holding the hex-encoded
// secret on the first line and the canonical salt label on the second.
// Salt persistence is the host's concern; the pool repository never
// stores salts.
type FileStore struct {
	Path string
}

// Save writes the salt. An existing file is refused unless overwrite is
// set; a half-written file never replaces a good one (temp + rename).
func (fs FileStore) Save(s *Salt, overwrite bool) error {
	if fs.Path == "" {
		return fmt.Errorf("derive: empty salt file path")
	}
	if !overwrite {
		if _, err := os.Lstat(fs.Path); err == nil {
			return fmt.Errorf("derive: salt file %s already exists", fs.Path)
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(fs.Path), 0o700); err != nil {
		return err
	}

	secret := s.Bytes()
	defer pool.Zero(secret)
	content := hex.EncodeToString(secret) + "\n" + s.Label() + "\n"

	tmp, err := os.CreateTemp(filepath.Dir(fs.Path), ".salt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, fs.Path)
}

// Load reads the salt back, re-validating the label and the secret
// length. The Ref is recomputed from the label bytes.
func (fs FileStore) Load() (*Salt, error) {
	data, err := os.ReadFile(fs.Path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		return nil, fmt.Errorf("derive: salt file %s: want 2 lines, got %d", fs.Path, len(lines))
	}

	secret, err := hex.DecodeString(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("derive: salt file %s: %w", fs.Path, err)
	}
	if len(secret) != SaltSize {
		pool.Zero(secret)
		return nil, fmt.Errorf("derive: salt file %s: secret is %d bytes, want %d", fs.Path, len(secret), SaltSize)
	}

	lbl, err := label.Parse(strings.TrimSpace(lines[1]))
	if err != nil {
		pool.Zero(secret)
		return nil, fmt.Errorf("derive: salt file %s: %w", fs.Path, err)
	}
	if lbl.Category != label.CategorySalt {
		pool.Zero(secret)
		return nil, fmt.Errorf("derive: salt file %s: label category %s, want %s", fs.Path, lbl.Category, label.CategorySalt)
	}
	createdAt, err := time.ParseInLocation(label.DateLayout, lbl.Date, time.UTC)
	if err != nil {
		pool.Zero(secret)
		return nil, fmt.Errorf("derive: salt file %s: %w", fs.Path, err)
	}
	canonical, err := label.Render(lbl)
	if err != nil {
		pool.Zero(secret)
		return nil, err
	}

	return &Salt{
		ownerPoolID: lbl.Data,
		algorithm:   lbl.Algorithm,
		createdAt:   createdAt,
		labelStr:    canonical,
		ref:         chainid.String([]byte(canonical)),
		secret:      secret,
	}, nil
}
