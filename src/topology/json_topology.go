package topology

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"sync"
)

const jsonTopologyPath = "topology.json"

// JSONTopology reads and writes an Assignment as a JSON file in a base
// directory.
type JSONTopology struct {
	l    sync.Mutex
	path string
}

// NewJSONTopology creates a new JSONTopology with reference to a base directory
// where the JSON file resides.
func NewJSONTopology(base string) *JSONTopology {
	return &JSONTopology{
		path: filepath.Join(base, jsonTopologyPath),
	}
}

// Path returns the location of the underlying file.
func (j *JSONTopology) Path() string {
	return j.path
}

// Assignment parses the underlying JSON file. An empty file yields a nil
// Assignment.
func (j *JSONTopology) Assignment() (Assignment, error) {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	if len(buf) == 0 {
		return nil, nil
	}

	var a Assignment
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}

	return a, nil
}

// Write persists an Assignment to the JSON file.
func (j *JSONTopology) Write(a Assignment) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, buf.Bytes(), 0644)
}

// Line builds an assignment where each node is connected to the next one.
func Line(ids []string) Assignment {
	a := make(Assignment, len(ids))
	for i, id := range ids {
		ns := []string{}
		if i > 0 {
			ns = append(ns, ids[i-1])
		}
		if i < len(ids)-1 {
			ns = append(ns, ids[i+1])
		}
		a[id] = ns
	}
	return a
}
