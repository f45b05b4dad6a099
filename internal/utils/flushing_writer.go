package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes from concurrent page audits and flushes buffered sinks after each write.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer; already wrapped writers are returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if wrapped, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return wrapped
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if bufferedWriter, buffered := flushingWriter.writer.(flusher); buffered {
		return bytesWritten, bufferedWriter.Flush()
	}
	return bytesWritten, nil
}
