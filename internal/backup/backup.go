package backup

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filippo.io/age"
)

const (
	snapshotExt  = ".db"
	encryptedExt = ".db.age"
	checksumExt  = ".sha256"
)

type Info struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	Encrypted bool      `json:"encrypted"`
}

// Create writes a consistent snapshot of the open SQLite database to outPath using VACUUM INTO.
// When recipient is an age X25519 public key the snapshot is encrypted and ".age" is appended
// to outPath. A SHA-256 sidecar is written next to the result.
func Create(ctx context.Context, db *sql.DB, outPath, recipient string) (Info, error) {
	if strings.TrimSpace(outPath) == "" {
		return Info{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Info{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(outPath); err == nil {
		return Info{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, outPath); err != nil {
		return Info{}, fmt.Errorf("snapshot database: %w", err)
	}

	final := outPath
	encrypted := false
	if strings.TrimSpace(recipient) != "" {
		final = outPath + ".age"
		if err := encryptFile(outPath, final, recipient); err != nil {
			_ = os.Remove(final)
			_ = os.Remove(outPath)
			return Info{}, err
		}
		if err := os.Remove(outPath); err != nil {
			return Info{}, fmt.Errorf("remove plaintext snapshot: %w", err)
		}
		encrypted = true
	}

	checksum, err := fileSHA256(final)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(final+checksumExt, []byte(checksum+"\n"), 0o644); err != nil {
		return Info{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(final)
	if err != nil {
		return Info{}, fmt.Errorf("stat backup: %w", err)
	}
	return Info{Path: final, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size(), Encrypted: encrypted}, nil
}

// Restore copies a snapshot over dbPath after checking its sidecar checksum, if present.
// Encrypted snapshots need identityFile, a file of age identities.
func Restore(backupPath, dbPath, identityFile string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + checksumExt); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	if strings.HasSuffix(backupPath, ".age") {
		if strings.TrimSpace(identityFile) == "" {
			return fmt.Errorf("backup is encrypted; an identity file is required")
		}
		return decryptFile(backupPath, dbPath, identityFile)
	}
	return copyFile(backupPath, dbPath)
}

func List(dir string) ([]Info, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]Info, 0)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !(strings.HasSuffix(name, snapshotExt) || strings.HasSuffix(name, encryptedExt)) {
			continue
		}
		full := filepath.Join(dir, name)
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + checksumExt); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, Info{
			Path:      full,
			Checksum:  checksum,
			CreatedAt: st.ModTime(),
			SizeBytes: st.Size(),
			Encrypted: strings.HasSuffix(name, encryptedExt),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func encryptFile(src, dst, recipient string) error {
	r, err := age.ParseX25519Recipient(strings.TrimSpace(recipient))
	if err != nil {
		return fmt.Errorf("parse age recipient: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create encrypted backup: %w", err)
	}
	defer out.Close()

	w, err := age.Encrypt(out, r)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return out.Sync()
}

func decryptFile(src, dst, identityFile string) error {
	keyFile, err := os.Open(identityFile)
	if err != nil {
		return fmt.Errorf("open identity file: %w", err)
	}
	defer keyFile.Close()
	identities, err := age.ParseIdentities(keyFile)
	if err != nil {
		return fmt.Errorf("parse identities: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close()
	r, err := age.Decrypt(in, identities...)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("decrypting backup: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
