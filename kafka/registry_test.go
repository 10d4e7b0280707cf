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
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/elodina/go-avro"
	"github.com/linkedin/goavro"
)

var trackingSchema = `{
    "type": "record",
    "name": "TrackingEvent",
    "namespace": "org.edx.tracking",
    "fields": [
        {"name": "id", "type": "string"},
        {"name": "course_id", "type": "string"},
        {"name": "time", "type": "string"},
        {"name": "event_type", "type": "string"},
        {"name": "page", "type": ["null", "string"]},
        {"name": "event", "type": ["null", "string"]}
    ]
}`

var tinySchema = `{"type": "record", "name": "Tiny", "fields": [{"name": "n", "type": "int"}]}`

var trackingValue = map[string]interface{}{
	"id":         "a1b2",
	"course_id":  "MITx/6.002x/2012_Fall",
	"time":       "2012-10-01T12:00:00.000000+00:00",
	"event_type": "/courseware",
	"page":       map[string]interface{}{"string": "https://courses.edx.org/courses/MITx/6.002x/2012_Fall/courseware/Week_1/Lesson_A/"},
	"event":      nil,
}

func encode(t *testing.T, schema string, value map[string]interface{}) []byte {
	t.Helper()
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	data, err := codec.BinaryFromNative([]byte{}, value)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func frame(id byte, data []byte) []byte {
	return append([]byte{0, 0, 0, 0, id}, data...)
}

// startRegistry serves trackingSchema as id 1 and tinySchema as id 2. It
// returns the listen address and a counter of schema requests.
func startRegistry(t *testing.T) (string, *int32) {
	var hits int32
	schemas := map[int32]string{1: trackingSchema, 2: tinySchema}
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var id int32
		if _, err := fmt.Sscanf(r.URL.Path, "/schemas/ids/%d", &id); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s, ok := schemas[id]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown id: %d", id), http.StatusNotFound)
			return
		}
		if err := json.NewEncoder(w).Encode(Schema{Schema: s, ID: int(id)}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("starting fake registry listener: %v", err)
	}
	server := &http.Server{Handler: http.HandlerFunc(handler)}
	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() { server.Close() })
	return ln.Addr().String(), &hits
}

func TestRegistryDecode(t *testing.T) {
	addr, hits := startRegistry(t)
	reg := NewRegistry(addr)
	val := frame(1, encode(t, trackingSchema, trackingValue))

	rec, err := reg.Decode(val)
	if err != nil {
		t.Fatal(err)
	}
	if rec["id"] != "a1b2" || rec["page"] != "https://courses.edx.org/courses/MITx/6.002x/2012_Fall/courseware/Week_1/Lesson_A/" {
		t.Fatalf("parsed and original are different: %v", rec)
	}
	if rec["event"] != nil {
		t.Fatalf("null union decoded as %v", rec["event"])
	}

	if _, err := reg.Decode(val); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("schema fetched %d times", n)
	}

	if _, err := reg.Decode(frame(9, nil)); err == nil {
		t.Fatal("expected error for unknown schema id")
	}
	if _, err := reg.Decode([]byte{1, 2, 3, 4, 5, 6, 7}); err == nil {
		t.Fatal("expected error for bad magic byte")
	}
	if _, err := reg.Decode([]byte{0, 0, 0}); err == nil {
		t.Fatal("expected error for short frame")
	}
}

func TestRegistryDecodeSmallFrame(t *testing.T) {
	addr, _ := startRegistry(t)
	val := frame(2, encode(t, tinySchema, map[string]interface{}{"n": 3}))
	if len(val) != 6 {
		t.Fatalf("expected a 6 byte frame, got %d", len(val))
	}
	rec, err := NewRegistry(addr).Decode(val)
	if err != nil {
		t.Fatal(err)
	}
	if rec["n"] != int32(3) {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestRegistryConcurrentFetch(t *testing.T) {
	addr, hits := startRegistry(t)
	reg := NewRegistry(addr)
	val := frame(1, encode(t, trackingSchema, trackingValue))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.Decode(val); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("schema fetched %d times", n)
	}
}

func TestElodinaDecode(t *testing.T) {
	schema, err := avro.ParseSchema(trackingSchema)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := avroDecode(schema, encode(t, trackingSchema, trackingValue))
	if err != nil {
		t.Fatal(err)
	}
	if rec["course_id"] != "MITx/6.002x/2012_Fall" {
		t.Fatalf("unexpected decoded map: %v", rec)
	}
}
