package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Files is the up/down pair written for one new schema change.
type Files struct {
	Version  string
	UpPath   string
	DownPath string
}

const upStub = "-- %s\n-- up\n\n"
const downStub = "-- %s\n-- down\n\n"

// Create scaffolds an empty migration pair in dir, versioned with the current
// timestamp so lexical order matches creation order.
func Create(dir, name string) (*Files, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	version := time.Now().Format("20060102150405")
	base := version + "_" + slug
	f := &Files{
		Version:  version,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	if err := os.WriteFile(f.UpPath, []byte(fmt.Sprintf(upStub, base)), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(f.DownPath, []byte(fmt.Sprintf(downStub, base)), 0o644); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return f, nil
}

// List returns the base names of every migration pair in dir, lexically
// ordered. A missing directory is an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}

// slugify lowercases a migration name and collapses separators to single
// underscores, dropping everything else.
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
