package api

import "net/http"

// accessLogWriter captures the status code and body size of a response so
// the access log line can report them after the handler runs. Handlers that
// never call WriteHeader logged as 200.
type accessLogWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func newAccessLogWriter(w http.ResponseWriter) *accessLogWriter {
	return &accessLogWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *accessLogWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *accessLogWriter) Write(data []byte) (int, error) {
	size, err := w.ResponseWriter.Write(data)
	w.bytesWritten += size
	return size, err
}
