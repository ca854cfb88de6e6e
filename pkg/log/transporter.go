package log

// Transporter delivers entries to an output such as stdout or a file.
// Write is only called from the buffer worker, never concurrently.
type Transporter interface {
	Name() string
	Write(entry Entry) error
	Close() error
}
