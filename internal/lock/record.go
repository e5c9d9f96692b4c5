package lock

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Record is the on-disk pid marker of the running monitor. A nil PID means
// no monitor is recorded.
type Record struct {
	PID *int `json:"pid"`
}

// WithPID returns a record naming pid.
func WithPID(pid int) Record {
	return Record{PID: &pid}
}

// HasPID reports whether the record names a process.
func (r Record) HasPID() bool {
	return r.PID != nil
}

// Marshal serializes the record. An empty record is {"pid": null}.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// ParseRecord deserializes a record. Empty input reads as an empty record.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	if len(bytes.TrimSpace(data)) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// String returns "pid N" or "no pid".
func (r Record) String() string {
	if r.PID == nil {
		return "no pid"
	}
	return "pid " + strconv.Itoa(*r.PID)
}
