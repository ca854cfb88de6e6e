// Package transporters contains the log outputs used by the service and
// the CLI.
package transporters

import (
	"encoding/json"
	"io"
	"os"

	"postcard/pkg/log"
)

// Stdout writes one JSON object per line.
type Stdout struct {
	w io.Writer
}

// NewStdout writes JSON lines to os.Stdout.
func NewStdout() *Stdout {
	return &Stdout{w: os.Stdout}
}

// NewStdoutWithWriter writes JSON lines to w.
func NewStdoutWithWriter(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Name() string { return "stdout" }

func (s *Stdout) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.w.Write(append(data, '\n'))
	return err
}

func (s *Stdout) Close() error { return nil }
