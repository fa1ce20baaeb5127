// Package report writes the run outputs: CSV reports, JSON snapshots, and
// per-apex Markdown migration checklists.
//
// Output files are plain overwrites; re-running into the same directory
// replaces the previous reports. Column layouts are stable and consumed by
// downstream spreadsheets, so they never change with the inventory shape.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edgeshift/edgeshift/internal/store"
)

// WriteAll writes every report for the inventory under outDir. Product and
// GTM exports are written only when the inventory was collected with the
// product surfaces enabled.
func WriteAll(inv *store.Inventory, outDir string, includeProducts bool) error {
	if err := ensureDir(outDir); err != nil {
		return err
	}

	if err := writeUsageSummary(outDir, inv); err != nil {
		return err
	}
	if err := writeHostnames(outDir, inv); err != nil {
		return err
	}
	if err := writeCertificates(outDir, inv); err != nil {
		return err
	}
	if err := writeSecuritySummary(outDir, inv); err != nil {
		return err
	}

	if includeProducts {
		if err := writeProducts(outDir, inv); err != nil {
			return err
		}
		for i := range inv.GTMDomains {
			if err := writeGTMDomain(outDir, &inv.GTMDomains[i]); err != nil {
				return err
			}
		}
	}

	if err := writeChecklists(outDir, inv); err != nil {
		return err
	}

	return writeJSON(filepath.Join(outDir, "inventory.json"), inv)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close() //nolint:errcheck,gosec
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close() //nolint:errcheck,gosec
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck,gosec
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func writeText(path, content string) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // reports are world-readable
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeText(path, string(b))
}
