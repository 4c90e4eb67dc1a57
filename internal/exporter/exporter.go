// Package exporter bundles per-panel drilling NC programs into a single
// ZIP artifact with a README, for the DRILLING job kind. Modeled after
// the teacher's internal/export package (github.com/piwi3910/...
// internal/export/labels.go's per-placed-part iteration and naming
// convention) but retargeted from QR-coded PDF labels onto per-panel NC
// filenames, per SPEC_FULL.md's ambient-package mapping. archive/zip is
// standard library: no third-party ZIP writer appears anywhere in the
// example pack to ground an alternative on (see DESIGN.md).
package exporter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/furnicam/furnicam/pkg/ascii"
)

// PanelFile is one generated NC program ready to be written into the
// bundle under its own filename.
type PanelFile struct {
	PanelName string
	WidthMM   float64
	HeightMM  float64
	NCText    string
}

// Filename returns this panel's bundle entry name:
// "<ascii_name>_<W>x<H>.nc".
func (p PanelFile) Filename() string {
	name := ascii.Filename(p.PanelName)
	if name == "" {
		name = "panel"
	}
	return fmt.Sprintf("%s_%.0fx%.0f.nc", name, p.WidthMM, p.HeightMM)
}

// ReadmeInfo carries the order-level metadata written into README.txt.
type ReadmeInfo struct {
	OrderID        string
	MachineProfile string
	Timestamp      string
	PanelCount     int
}

// BuildDrillingBundle writes one <panel>.nc file per PanelFile plus a
// README.txt summarizing the order, machine profile, and file list, and
// returns the assembled ZIP bytes.
func BuildDrillingBundle(info ReadmeInfo, files []PanelFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f.Filename()
		names = append(names, name)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write([]byte(f.NCText)); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	readme := buildReadme(info, names)
	w, err := zw.Create("README.txt")
	if err != nil {
		return nil, fmt.Errorf("create README.txt: %w", err)
	}
	if _, err := w.Write([]byte(readme)); err != nil {
		return nil, fmt.Errorf("write README.txt: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func buildReadme(info ReadmeInfo, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order: %s\r\n", ascii.Transliterate(info.OrderID))
	fmt.Fprintf(&b, "Generated: %s\r\n", info.Timestamp)
	fmt.Fprintf(&b, "Machine profile: %s\r\n", info.MachineProfile)
	fmt.Fprintf(&b, "Panel count: %d\r\n", info.PanelCount)
	b.WriteString("Files:\r\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %s\r\n", n)
	}
	return b.String()
}
