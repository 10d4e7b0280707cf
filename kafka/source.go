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


// Package kafka reads tracking events from Kafka topics, either as JSON or as
// Avro framed for a Confluent schema registry.
package kafka

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Decoder turns the value of one kafka message into a tracking event.
type Decoder interface {
	Decode(val []byte) (map[string]interface{}, error)
}

// JSONDecoder decodes message values holding one JSON object. Numbers stay
// json.Number so events are stored as they were logged.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(val []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(val))
	dec.UseNumber()
	event := make(map[string]interface{})
	if err := dec.Decode(&event); err != nil {
		return nil, errors.Wrap(err, "decoding json event")
	}
	return event, nil
}

// Source is an edxdk.Source over a kafka consumer group. Each Record is a
// map[string]interface{} event.
type Source struct {
	Hosts   []string
	Topics  []string
	Group   string
	MaxMsgs int
	Decoder Decoder
	Log     edxdk.Logger

	read     int
	consumer *cluster.Consumer
	messages <-chan *sarama.ConsumerMessage
	mark     func(*sarama.ConsumerMessage)
}

// NewSource returns a Source decoding JSON from the "tracking" topic on a
// local broker.
func NewSource() *Source {
	return &Source{
		Hosts:   []string{"localhost:9092"},
		Topics:  []string{"tracking"},
		Group:   "edxdk",
		Decoder: JSONDecoder{},
		Log:     edxdk.NopLogger{},
	}
}

// Record returns the next event. It returns io.EOF once MaxMsgs messages
// have been read, if MaxMsgs is set. Messages that fail to decode are still
// marked so a restarted consumer does not stall on them.
func (s *Source) Record() (interface{}, error) {
	if s.MaxMsgs > 0 && s.read >= s.MaxMsgs {
		return nil, io.EOF
	}
	msg, ok := <-s.messages
	if !ok {
		return nil, errors.New("messages channel closed")
	}
	s.read++
	defer s.mark(msg)
	event, err := s.Decoder.Decode(msg.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "message %s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return event, nil
}

// Open joins the consumer group, starting from the oldest retained offset.
func (s *Source) Open() error {
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	consumer, err := cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrapf(err, "joining group %s on %v", s.Group, s.Hosts)
	}
	s.consumer = consumer
	s.messages = consumer.Messages()
	s.mark = func(msg *sarama.ConsumerMessage) { consumer.MarkOffset(msg, "") }

	go func() {
		for err := range consumer.Errors() {
			s.Log.Printf("kafka consumer error: %v", err)
		}
	}()
	go func() {
		for ntf := range consumer.Notifications() {
			s.Log.Debugf("rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close leaves the consumer group.
func (s *Source) Close() error {
	return errors.Wrap(s.consumer.Close(), "closing kafka consumer")
}
