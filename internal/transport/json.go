// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"io"
	"sync"
)

// JSONTransport writes every message as one JSON line (NDJSON) to w.
type JSONTransport struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONTransport(w io.Writer) *JSONTransport {
	return &JSONTransport{enc: json.NewEncoder(w)}
}

func (j *JSONTransport) Send(data any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(data)
}

func (j *JSONTransport) Close() error { return nil }

var _ Transport = (*JSONTransport)(nil)
