package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/odb"
)

// DryRun writes the request body each target would be posted with, in
// order, without contacting the service.
func DryRun(w io.Writer, targets []catalog.Target, programID string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, t := range targets {
		req, err := odb.BuildRequest(t, programID)
		if err != nil {
			return fmt.Errorf("loader: dry run %q: %w", t.Name, err)
		}
		if err := enc.Encode(req); err != nil {
			return fmt.Errorf("loader: dry run %q: %w", t.Name, err)
		}
	}
	return nil
}
