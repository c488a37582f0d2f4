package aeroplane

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-kit/log"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const historySheet = "History"

// ExportConfig configures what is written of a history, and where.
type ExportConfig struct {
	Dir      string // output directory, created if needed
	Filename string // prefix of every file
	AsCSV    bool
	AsXLSX   bool
	Plot     bool // one PNG per series against time
	Logger   log.Logger
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsXLSX && !c.Plot
}

func (c ExportConfig) path(suffix string) string {
	name := c.Filename
	if name == "" {
		name = "pitch"
	}
	return filepath.Join(c.Dir, name+suffix)
}

// Export writes the history in every enabled format and returns the files written.
func Export(h History, conf ExportConfig) ([]string, error) {
	if conf.IsUseless() {
		return nil, nil
	}
	if len(h) == 0 {
		return nil, fmt.Errorf("export: empty history")
	}
	if conf.Logger == nil {
		conf.Logger = log.NewNopLogger()
	}
	if conf.Dir != "" {
		if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	var files []string
	if conf.AsCSV {
		fn := conf.path(".csv")
		if err := writeCSV(fn, h); err != nil {
			return files, err
		}
		files = append(files, fn)
	}
	if conf.AsXLSX {
		fn := conf.path(".xlsx")
		if err := writeXLSX(fn, h); err != nil {
			return files, err
		}
		files = append(files, fn)
	}
	if conf.Plot {
		series := h.Series()
		cols := series.Columns()
		for i := 1; i < len(cols); i++ {
			fn := conf.path("-" + SeriesNames[i] + ".png")
			if err := savePlot(fn, SeriesNames[i], series.T, cols[i]); err != nil {
				return files, err
			}
			files = append(files, fn)
		}
	}
	for _, fn := range files {
		conf.Logger.Log("level", "info", "subsys", "export", "file", fn)
	}
	return files, nil
}

// StreamStates collects the states sent on stateChan until it is closed, then exports them.
func StreamStates(conf ExportConfig, stateChan <-chan State) (History, error) {
	var h History
	for st := range stateChan {
		h = append(h, st)
	}
	if _, err := Export(h, conf); err != nil {
		return h, err
	}
	return h, nil
}

func formatRow(st State) []string {
	vals := []float64{st.T, st.Theta, st.Q, st.Xe, st.Ze, st.Ub, st.Wb, st.Alpha, st.Gamma, st.Delta, st.Moment, st.Thrust}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

func writeCSV(fn string, h History) error {
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(SeriesNames); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	for _, st := range h {
		if err := w.Write(formatRow(st)); err != nil {
			return fmt.Errorf("export %s: %w", fn, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	return f.Close()
}

func writeXLSX(fn string, h History) error {
	f := excelize.NewFile()
	defer f.Close()
	idx, err := f.NewSheet(historySheet)
	if err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	hdr := SeriesNames
	if err := f.SetSheetRow(historySheet, "A1", &hdr); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	for i, st := range h {
		row := []float64{st.T, st.Theta, st.Q, st.Xe, st.Ze, st.Ub, st.Wb, st.Alpha, st.Gamma, st.Delta, st.Moment, st.Thrust}
		if err := f.SetSheetRow(historySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("export %s: %w", fn, err)
		}
	}
	if err := f.SaveAs(fn); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	return nil
}

func savePlot(fn, name string, t, y []float64) error {
	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = name
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(t))
	for i := range t {
		pts[i].X = t[i]
		pts[i].Y = y[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	c := vgimg.NewWith(vgimg.UseWH(6*vg.Inch, 4*vg.Inch), vgimg.UseDPI(96))
	p.Draw(draw.New(c))

	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export %s: %w", fn, err)
	}
	return f.Close()
}
