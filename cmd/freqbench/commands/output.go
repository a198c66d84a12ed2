package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// summaryFreqs are reported on the terminal after every measurement.
var summaryFreqs = []float64{100, 1000, 10000}

// writeResponseCSV stores curve as "frequency_hz,response_db" rows.
func writeResponseCSV(fs afero.Fs, path string, curve models.ResponseCurve) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "cannot create directory %s", dir)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer func() { dbg(f.Close()) }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frequency_hz", "response_db"}); err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	for i := range curve.Frequencies {
		row := []string{
			strconv.FormatFloat(curve.Frequencies[i], 'f', 3, 64),
			strconv.FormatFloat(curve.ResponseDb[i], 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "cannot write %s", path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "cannot write %s", path)
}

func printSummary(out io.Writer, curve models.ResponseCurve, offset int) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range curve.ResponseDb {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if _, err := fmt.Fprintf(out, "bins: %d, alignment offset: %d samples, range: %.2f .. %.2f dB\n", curve.Len(), offset, lo, hi); err != nil {
		return err
	}
	last := curve.Frequencies[curve.Len()-1]
	for _, f := range summaryFreqs {
		if f > last {
			break
		}
		if _, err := fmt.Fprintf(out, "  %8.0f Hz: %7.2f dB\n", f, curve.At(f)); err != nil {
			return err
		}
	}
	return nil
}
