package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// fileVersion is the trace file format version.
const fileVersion = 1

type fileHeader struct {
	Version  int    `json:"version"`
	Scenario string `json:"scenario"`
	Seed     int64  `json:"seed"`
}

// fileLine is one JSONL row; exactly one of Evac or Zone is set.
type fileLine struct {
	Evac *EvacRecord `json:"evac,omitempty"`
	Zone *ZoneRecord `json:"zone,omitempty"`
}

// WriteFile writes the trace to path, creating parent directories as needed.
// The file is zstd-compressed JSONL: a header line followed by one record
// per line.
func WriteFile(path string, rt *RunTrace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(fileHeader{Version: fileVersion, Scenario: rt.Scenario, Seed: rt.Seed})
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	je := json.NewEncoder(bw)
	for i := range rt.Evac {
		if err := je.Encode(fileLine{Evac: &rt.Evac[i]}); err != nil {
			return fmt.Errorf("encoding evac record: %w", err)
		}
	}
	for i := range rt.Zones {
		if err := je.Encode(fileLine{Zone: &rt.Zones[i]}); err != nil {
			return fmt.Errorf("encoding zone record: %w", err)
		}
	}
	return nil
}

// ReadFile loads a trace written by WriteFile.
func ReadFile(path string) (*RunTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	hb, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	var h fileHeader
	if err := json.Unmarshal(hb, &h); err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	if h.Version != fileVersion {
		return nil, fmt.Errorf("unsupported trace version %d", h.Version)
	}

	rt := NewRunTrace(h.Scenario, h.Seed)
	jd := json.NewDecoder(br)
	for {
		var ln fileLine
		err := jd.Decode(&ln)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		switch {
		case ln.Evac != nil:
			rt.RecordEvac(*ln.Evac)
		case ln.Zone != nil:
			rt.RecordZone(*ln.Zone)
		}
	}
	return rt, nil
}
