package client

import (
	"fmt"
	"os"
	"path/filepath"
)

// PayslipStore saves downloaded payslips under Dir.
type PayslipStore struct {
	Dir string
}

// Save writes body to Dir/filename and returns the full path. Only the base
// name of filename is used.
func (s PayslipStore) Save(filename string, body []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid payslip file name %q", filename)
	}

	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create payslip dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("save payslip: %w", err)
	}
	return path, nil
}
