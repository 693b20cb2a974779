// Package reporter renders an analysis result as JSON. The graphical tree
// viewer and XML/text report writers are out of scope per spec.md §1; this
// plain encoding/json dump is not that report-writer engine, so it is kept
// and adapted from the teacher's reporter/json.go (create file or use
// stdout, encode with indentation, wrap errors with %w).
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/classdep/classdep/metrics"
)

// PackageReport is the JSON-serializable view of one package's metrics.
// depgraph.Package itself carries unexported fields and pointer-shaped
// afferent/efferent sets, so it is flattened here rather than encoded
// directly.
type PackageReport struct {
	Name                string   `json:"name"`
	AfferentCoupling    int      `json:"afferentCoupling"`
	EfferentCoupling    int      `json:"efferentCoupling"`
	Abstractness        float64  `json:"abstractness"`
	Instability         float64  `json:"instability"`
	DistanceFromMainSeq float64  `json:"distanceFromMainSequence"`
	ContainsCycle       bool     `json:"containsCycle"`
	Afferents           []string `json:"afferents"`
	Efferents           []string `json:"efferents"`
}

// Report is the top-level JSON document.
type Report struct {
	Packages []PackageReport `json:"packages"`
}

// BuildReport flattens metrics.Compute's output into a Report.
func BuildReport(all []metrics.PackageMetrics) Report {
	r := Report{Packages: make([]PackageReport, 0, len(all))}
	for _, m := range all {
		r.Packages = append(r.Packages, PackageReport{
			Name:                m.Package.Name(),
			AfferentCoupling:    m.AfferentCoupling,
			EfferentCoupling:    m.EfferentCoupling,
			Abstractness:        m.Abstractness,
			Instability:         m.Instability,
			DistanceFromMainSeq: m.DistanceFromMainSeq,
			ContainsCycle:       m.ContainsCycle,
			Afferents:           m.Package.AfferentNames(),
			Efferents:           m.Package.EfferentNames(),
		})
	}
	return r
}

// WriteJSON encodes report as indented JSON to w.
func WriteJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteJSONFile creates (or truncates) path and writes report to it.
func WriteJSONFile(path string, report Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()
	return WriteJSON(file, report)
}
