package telemetry

import (
	"strings"
	"sync"
)

type RecordKind int

const (
	RECORD_BROKEN RecordKind = iota
	RECORD_WARNING
	RECORD_DEBUG
	RECORD_COUNT
)

type Record struct {
	Kind   RecordKind
	Id     string
	Params []any
}

// Recorder implements API by keeping every report in memory, it is meant to
// be used in tests to assert that something was (or wasn't) reported.
type Recorder struct {
	mutex   sync.Mutex
	records []Record
}

func (r *Recorder) add(rec Record) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.records = append(r.records, rec)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Record{Kind: RECORD_BROKEN, Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Record{Kind: RECORD_WARNING, Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Record{Kind: RECORD_DEBUG, Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Record{Kind: RECORD_COUNT, Id: id, Params: []any{count}})
}

// Records returns a copy of all records of a given kind whose id ends
// with `suffix`, an empty suffix matches everything.
func (r *Recorder) Records(kind RecordKind, suffix string) []Record {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Record
	for _, rec := range r.records {
		if rec.Kind != kind {
			continue
		}
		if !strings.HasSuffix(rec.Id, suffix) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
