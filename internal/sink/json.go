// Package sink writes batch reports to local files for the spreadsheet
// and dashboard consumers.
package sink

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/koukamap/curator/internal/report"
)

// WriteJSON writes the report to path as indented JSON.
func WriteJSON(path string, rep report.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return eris.Wrap(err, "sink: marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "sink: write %s", path)
	}
	zap.L().Info("sink: report written", zap.String("path", path))
	return nil
}
