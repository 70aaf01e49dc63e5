// Package transcribe drives concurrent recognition of planned chunks.
//
// A fixed-size pool of workers claims chunks from a queue; each worker
// owns one lazily-constructed recognition engine that it reuses for every
// chunk it claims, so engine construction cost is amortized without any
// cross-worker sharing or locking. Extraction and recognition failures
// are isolated per chunk: the failed chunk is recorded and the run
// continues. Results arrive in completion order and are sorted by chunk
// ID before being handed downstream.
package transcribe
