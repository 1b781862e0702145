package telemetry

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/sailsim/internal/dynamo"
	"github.com/san-kum/sailsim/internal/sim"
)

// CSVWriter appends records to w, writing the header with the first batch.
type CSVWriter struct {
	w             io.Writer
	headerWritten bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

func (c *CSVWriter) Write(records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.w); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		c.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, c.w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// ReadCSV parses records written by CSVWriter.
func ReadCSV(r io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}

// Recorder is a sim.Observer that samples every Nth tick. Records are kept in
// memory and, when an output is set, streamed as CSV.
type Recorder struct {
	every   int
	sampler *Sampler
	out     *CSVWriter
	logger  *slog.Logger

	records []Record
	broken  int
	err     error
}

func NewRecorder(every int, tp dynamo.TickParams) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{
		every:   every,
		sampler: NewSampler(tp),
	}
}

func (r *Recorder) SetOutput(w io.Writer)         { r.out = NewCSVWriter(w) }
func (r *Recorder) SetLogger(logger *slog.Logger) { r.logger = logger }
func (r *Recorder) Records() []Record             { return r.records }

// Err returns the first write error. Recording continues in memory after a
// failed write but the output is abandoned.
func (r *Recorder) Err() error { return r.err }

func (r *Recorder) OnTick(st *dynamo.Store, stats sim.TickStats) {
	r.broken += stats.Broken
	if stats.Tick%uint64(r.every) != 0 {
		return
	}

	rec := r.sampler.Sample(st, stats)
	rec.Broken = r.broken
	r.records = append(r.records, rec)

	if r.logger != nil {
		r.logger.Debug("telemetry", "record", rec)
	}
	if r.out != nil && r.err == nil {
		if err := r.out.Write(rec); err != nil {
			r.err = err
			if r.logger != nil {
				r.logger.Error("telemetry output failed", "error", err)
			}
		}
	}
}

// Reset drops the in-memory records and the break count. The CSV output is
// left as it is.
func (r *Recorder) Reset() {
	r.records = r.records[:0]
	r.broken = 0
}
