package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/skyplan/core/atoms"
	"github.com/kilianp07/skyplan/core/model"
)

// StepTable is the step table of one observation.
type StepTable struct {
	ObservationID string
	Rows          []atoms.StepRow
}

var tableHeader = []string{
	"observation_id", "atom", "data_label", "class", "observe_type", "qa_state",
	"instrument", "filter", "disperser", "fpu", "wavelength", "p", "q",
	"exposure_time", "coadds", "exec_time_ms", "guided",
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// WriteStepTableCSV writes the tables to w as one CSV document.
func WriteStepTableCSV(w io.Writer, tables []StepTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return err
	}
	for _, t := range tables {
		for _, r := range t.Rows {
			rec := []string{
				t.ObservationID,
				strconv.Itoa(r.Atom),
				r.DataLabel,
				string(r.Class),
				r.ObserveType,
				string(r.QAState),
				r.Instrument,
				r.Filter,
				r.Disperser,
				r.FPU,
				formatFloat(r.Wavelength),
				formatFloat(r.P),
				formatFloat(r.Q),
				formatFloat(r.ExposureTime),
				strconv.Itoa(r.Coadds),
				strconv.FormatInt(r.ExecTime.Milliseconds(), 10),
				strconv.FormatBool(r.Guided),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStepTableCSV reads a document written by WriteStepTableCSV. Rows of
// one observation must be contiguous.
func ReadStepTableCSV(r io.Reader) ([]StepTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(tableHeader)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range tableHeader {
		if header[i] != h {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i+1, h, header[i])
		}
	}

	var tables []StepTable
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(tables); n == 0 || tables[n-1].ObservationID != rec[0] {
			tables = append(tables, StepTable{ObservationID: rec[0]})
		}
		t := &tables[len(tables)-1]
		t.Rows = append(t.Rows, row)
	}
	return tables, nil
}

func parseRow(rec []string) (atoms.StepRow, error) {
	var (
		row  atoms.StepRow
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}
	row.Atom = atoi(rec[1])
	row.DataLabel = rec[2]
	row.Class = model.ParseObsClass(rec[3])
	row.ObserveType = rec[4]
	row.QAState = model.ParseQAState(rec[5])
	row.Instrument = rec[6]
	row.Filter = rec[7]
	row.Disperser = rec[8]
	row.FPU = rec[9]
	row.Wavelength = atof(rec[10])
	row.P = atof(rec[11])
	row.Q = atof(rec[12])
	row.ExposureTime = atof(rec[13])
	row.Coadds = atoi(rec[14])
	row.ExecTime = time.Duration(atoi(rec[15])) * time.Millisecond
	guided, err := strconv.ParseBool(rec[16])
	errs = append(errs, err)
	row.Guided = guided
	return row, errors.Join(errs...)
}
