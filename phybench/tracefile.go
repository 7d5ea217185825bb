package phybench

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A UE is one user equipment scheduled in a subframe.
type UE struct {
	BaseStationID int
	CRNTI         int
	PRBs          int
	Layers        int
	Mod           int
	Criticality   int
	IsNew         bool
}

// A Subframe is the set of UEs scheduled in one millisecond.
type Subframe struct {
	ID  int
	UEs []UE
}

// A TraceFileReader reads LTE subframe traces. A subframe is a line with the
// number of UEs, one line of seven integers per UE (base station, CRNTI,
// PRBs, layers, modulation, criticality, is-new) and a terminating line
// "---------- <subframe id>". Blank lines are ignored.
type TraceFileReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewTraceFileReader creates a reader.
func NewTraceFileReader(r io.Reader) *TraceFileReader {
	return &TraceFileReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next subframe, or io.EOF if the trace has no more.
func (r *TraceFileReader) Next() (*Subframe, error) {
	fields, err := r.nextFields()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	if len(fields) != 1 {
		return nil, r.errorf("expected the number of UEs")
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil, r.errorf("invalid number of UEs %q", fields[0])
	}

	sf := &Subframe{}
	for i := 0; i < n; i++ {
		ue, err := r.readUE()
		if err != nil {
			return nil, err
		}
		sf.UEs = append(sf.UEs, ue)
	}

	fields, err = r.nextFields()
	if err != nil {
		return nil, r.unexpectedEOF(err)
	}

	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") {
		return nil, r.errorf("expected the end of subframe")
	}

	sf.ID, err = strconv.Atoi(fields[1])
	if err != nil {
		return nil, r.errorf("invalid subframe id %q", fields[1])
	}

	return sf, nil
}

func (r *TraceFileReader) readUE() (UE, error) {
	fields, err := r.nextFields()
	if err != nil {
		return UE{}, r.unexpectedEOF(err)
	}

	if len(fields) != 7 {
		return UE{}, r.errorf("expected 7 fields, got %d", len(fields))
	}

	var values [7]int
	for i, f := range fields {
		values[i], err = strconv.Atoi(f)
		if err != nil {
			return UE{}, r.errorf("invalid field %q", f)
		}
	}

	return UE{
		BaseStationID: values[0],
		CRNTI:         values[1],
		PRBs:          values[2],
		Layers:        values[3],
		Mod:           values[4],
		Criticality:   values[5],
		IsNew:         values[6] != 0,
	}, nil
}

func (r *TraceFileReader) nextFields() ([]string, error) {
	for r.scanner.Scan() {
		r.line++

		fields := strings.Fields(r.scanner.Text())
		if len(fields) > 0 {
			return fields, nil
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading trace file")
	}

	return nil, io.EOF
}

func (r *TraceFileReader) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "trace file line %d", r.line)
}

func (r *TraceFileReader) unexpectedEOF(err error) error {
	if err == io.EOF {
		return errors.Wrapf(io.ErrUnexpectedEOF, "trace file line %d", r.line)
	}
	return err
}
