package commands

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/petrzlen/freqbench-golang/internal/config"
	"github.com/spf13/afero"
)

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = "out"
	root := NewRootCommand(cfg, fs)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readCurve(t *testing.T, fs afero.Fs, path string) (freqs, db []float64) {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) < 2 || rows[0][0] != "frequency_hz" {
		t.Fatalf("unexpected csv header %v", rows[0])
	}
	for _, row := range rows[1:] {
		fr, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			t.Fatal(err)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			t.Fatal(err)
		}
		freqs = append(freqs, fr)
		db = append(db, v)
	}
	return freqs, db
}

func requireFlatInBand(t *testing.T, freqs, db []float64, lo, hi, want, eps float64) {
	t.Helper()
	checked := 0
	for i, f := range freqs {
		if f < lo || f > hi {
			continue
		}
		checked++
		if math.Abs(db[i]-want) > eps {
			t.Fatalf("%.1f Hz: %v dB, want %v", f, db[i], want)
		}
	}
	if checked == 0 {
		t.Fatal("no bins in band")
	}
}

var sweepArgs = []string{
	"--loopback", "sweep",
	"--start", "100", "--end", "3000", "--duration", "0.25",
	"--sample-rate", "8000", "--buffer-size", "256", "--smooth", "1",
}

func TestSweepLoopback(t *testing.T) {
	fs := afero.NewMemMapFs()
	out, err := run(t, fs, sweepArgs...)
	if err != nil {
		t.Fatalf("sweep error = %v", err)
	}
	if !strings.Contains(out, "bins:") || !strings.Contains(out, "1000 Hz") {
		t.Errorf("summary = %q, want bin count and 1 kHz line", out)
	}

	for _, name := range []string{"out/stimulus.wav", "out/captured.wav", "out/response.csv"} {
		if ok, _ := afero.Exists(fs, name); !ok {
			t.Errorf("%s was not written", name)
		}
	}

	freqs, db := readCurve(t, fs, "out/response.csv")
	requireFlatInBand(t, freqs, db, 200, 2900, 20*math.Log10(loopbackGain), 1e-3)
}

func TestAnalyzeSavedSweep(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := run(t, fs, sweepArgs...); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, fs, "analyze", "out/stimulus.wav", "out/captured.wav",
		"--align-offset", "-1", "--smooth", "1", "--csv", "out/analyzed.csv")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	freqs, db := readCurve(t, fs, "out/analyzed.csv")
	requireFlatInBand(t, freqs, db, 200, 2900, 20*math.Log10(loopbackGain), 0.01)

	_, err = run(t, fs, "analyze", "out/stimulus.wav", "out/captured.wav", "--points", "64", "--csv", "out/small.csv")
	if err != nil {
		t.Fatal(err)
	}
	if freqs, _ := readCurve(t, fs, "out/small.csv"); len(freqs) != 64 {
		t.Errorf("decimated curve has %d points, want 64", len(freqs))
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	if _, err := run(t, afero.NewMemMapFs(), "analyze", "nope.wav", "nope.wav"); err == nil {
		t.Error("analyze error = nil, want missing file error")
	}
}

func TestDevicesLoopback(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), "--loopback", "devices")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "loopback") {
		t.Errorf("devices output = %q, want loopback note", out)
	}
}

func TestSweepInvalidStimulus(t *testing.T) {
	_, err := run(t, afero.NewMemMapFs(), "--loopback", "sweep", "--duration", "0")
	if err == nil {
		t.Error("sweep error = nil, want invalid duration")
	}
}

func TestConvert(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := run(t, fs, sweepArgs...); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, fs, "convert", "out/captured.wav", "copies/captured.wav"); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if ok, _ := afero.Exists(fs, "copies/captured.wav"); !ok {
		t.Error("converted file was not written")
	}
	if _, err := run(t, fs, "convert", "out/response.csv", "copies/response.wav"); err == nil {
		t.Error("convert error = nil, want unsupported format")
	}
}
