// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.


package kafka

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/elodina/go-avro"
	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// frameHeader is the magic byte plus the big endian schema id that prefix
// every Confluent framed value.
const frameHeader = 5

// Schema is a schema registry response.
type Schema struct {
	Schema  string `json:"schema"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
	ID      int    `json:"id"`
}

// Registry is a Decoder for Avro values framed with a schema id. Writer
// schemas are fetched from the registry at URL (host:port) on first use and
// cached by id.
type Registry struct {
	URL    string
	Client *http.Client
	Log    edxdk.Logger

	mu      sync.RWMutex
	schemas map[int32]avro.Schema
}

// NewRegistry returns a Registry for the schema registry at url.
func NewRegistry(url string) *Registry {
	return &Registry{
		URL:     url,
		Client:  http.DefaultClient,
		Log:     edxdk.NopLogger{},
		schemas: make(map[int32]avro.Schema),
	}
}

// Decode implements Decoder.
func (r *Registry) Decode(val []byte) (map[string]interface{}, error) {
	if len(val) < frameHeader || val[0] != 0 {
		return nil, errors.Errorf("not a schema registry frame: % x", val)
	}
	id := int32(binary.BigEndian.Uint32(val[1:frameHeader]))
	schema, err := r.schema(id)
	if err != nil {
		return nil, errors.Wrapf(err, "schema %d", id)
	}
	event, err := avroDecode(schema, val[frameHeader:])
	return event, errors.Wrapf(err, "decoding avro with schema %d", id)
}

func (r *Registry) schema(id int32) (avro.Schema, error) {
	r.mu.RLock()
	s, ok := r.schemas[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another caller may have fetched it while we waited for the lock
	if s, ok := r.schemas[id]; ok {
		return s, nil
	}
	s, err := r.fetch(id)
	if err != nil {
		return nil, err
	}
	r.schemas[id] = s
	return s, nil
}

func (r *Registry) fetch(id int32) (rs avro.Schema, rerr error) {
	resp, err := r.Client.Get(fmt.Sprintf("http://%s/schemas/ids/%d", r.URL, id))
	if err != nil {
		return nil, errors.Wrap(err, "getting schema from registry")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && rerr == nil {
			rerr = errors.Wrap(cerr, "closing registry response")
		}
	}()
	if resp.StatusCode >= 300 {
		body, _ := ioutil.ReadAll(resp.Body)
		return nil, errors.Errorf("registry returned %d: %s", resp.StatusCode, body)
	}
	sch := &Schema{}
	if err := json.NewDecoder(resp.Body).Decode(sch); err != nil {
		return nil, errors.Wrap(err, "decoding registry response")
	}
	s, err := avro.ParseSchema(sch.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	r.Log.Debugf("cached avro schema %d (%s v%d)", id, sch.Subject, sch.Version)
	return s, nil
}

func avroDecode(schema avro.Schema, data []byte) (map[string]interface{}, error) {
	reader := avro.NewGenericDatumReader()
	reader.SetSchema(schema)
	rec := avro.NewGenericRecord(schema)
	if err := reader.Read(rec, avro.NewBinaryDecoder(data)); err != nil {
		return nil, errors.Wrap(err, "reading generic datum")
	}
	return rec.Map(), nil
}
