// Package publish formats readings and hands them to the session, QoS 0,
// fire-and-forget.
package publish

import (
	"context"
	"errors"

	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/types"
	"sensornode-go/x/strconvx"
)

// Sender is the pub/sub session's send side. The payload is only valid for
// the duration of the call.
type Sender interface {
	Publish(topic types.TopicID, qos types.QoS, payload []byte) error
}

// Reader produces readings (measure.Source).
type Reader interface {
	TakeReading(ctx context.Context) (types.Reading, error)
}

type Publisher struct {
	sender Sender
	reader Reader
	id     string
	topics types.Topics
	obs    observer.Observer

	buf []byte
}

// New fixes the client id and topic ids for the life of the publisher.
func New(s Sender, r Reader, clientID string, topics types.Topics, obs observer.Observer) *Publisher {
	return &Publisher{
		sender: s,
		reader: r,
		id:     clientID,
		topics: topics,
		obs:    observer.OrNop(obs),
		buf:    make([]byte, 0, 128),
	}
}

// AppendMeasurement appends the measurement payload:
// {"id":"<id>","temperature":<f>,"humidity":<f>,"dewpoint":<f>}
func AppendMeasurement(dst []byte, id string, r types.Reading) []byte {
	dst = append(dst, `{"id":"`...)
	dst = append(dst, id...)
	dst = append(dst, `","temperature":`...)
	dst = strconvx.AppendFloat(dst, r.Temperature, 'f', 6, 64)
	dst = append(dst, `,"humidity":`...)
	dst = strconvx.AppendFloat(dst, r.Humidity, 'f', 6, 64)
	dst = append(dst, `,"dewpoint":`...)
	dst = strconvx.AppendFloat(dst, r.DewPoint, 'f', 6, 64)
	return append(dst, '}')
}

// AppendTelemetry appends the telemetry payload: {"id":"<id>","battery":<f>}
func AppendTelemetry(dst []byte, id string, r types.Reading) []byte {
	dst = append(dst, `{"id":"`...)
	dst = append(dst, id...)
	dst = append(dst, `","battery":`...)
	dst = strconvx.AppendFloat(dst, r.Voltage, 'f', 6, 64)
	return append(dst, '}')
}

func (p *Publisher) PublishMeasurement(r types.Reading) error {
	p.buf = AppendMeasurement(p.buf[:0], p.id, r)
	return p.send("publish.measurement", p.topics.Measurement)
}

func (p *Publisher) PublishTelemetry(r types.Reading) error {
	p.buf = AppendTelemetry(p.buf[:0], p.id, r)
	return p.send("publish.telemetry", p.topics.Telemetry)
}

func (p *Publisher) send(op string, topic types.TopicID) error {
	err := p.sender.Publish(topic, types.QoS0, p.buf)
	if err != nil {
		err = errcode.Wrap(errcode.PublishFailed, op, err)
		p.obs.Observe(observer.Event{Kind: observer.KindFault, Op: op, Err: err})
		return err
	}
	p.obs.Observe(observer.Event{Kind: observer.KindPublish, Op: op, Detail: string(p.buf)})
	return nil
}

// Cycle is one measurement pass: take a reading, publish both payloads.
// Measurement faults do not stop the publishes; the returned error only
// reports failed sends.
func (p *Publisher) Cycle(ctx context.Context) error {
	r, _ := p.reader.TakeReading(ctx)
	errM := p.PublishMeasurement(r)
	errT := p.PublishTelemetry(r)
	return errors.Join(errM, errT)
}
