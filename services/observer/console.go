package observer

import (
	"io"

	"sensornode-go/x/strconvx"
)

// Console writes one line per event. With a nil writer it falls back to
// println, which on the MCU goes to the default console.
type Console struct {
	W      io.Writer
	Prefix string

	buf []byte
}

func (c *Console) Observe(e Event) {
	b := c.buf[:0]
	if c.Prefix != "" {
		b = append(b, c.Prefix...)
	} else {
		b = append(b, "[node]"...)
	}
	b = append(b, ' ')
	b = append(b, e.Kind.String()...)
	if e.Op != "" {
		b = append(b, ' ')
		b = append(b, e.Op...)
	}
	if e.Kind == KindState || e.Kind == KindWake || e.Kind == KindReconnect {
		b = append(b, " state="...)
		b = append(b, e.State.String()...)
	}
	if e.Kind == KindReading {
		b = append(b, " t="...)
		b = strconvx.AppendFloat(b, e.Reading.Temperature, 'f', 2, 64)
		b = append(b, " rh="...)
		b = strconvx.AppendFloat(b, e.Reading.Humidity, 'f', 2, 64)
		b = append(b, " dp="...)
		b = strconvx.AppendFloat(b, e.Reading.DewPoint, 'f', 2, 64)
		b = append(b, " v="...)
		b = strconvx.AppendFloat(b, e.Reading.Voltage, 'f', 3, 64)
	}
	if e.Detail != "" {
		b = append(b, ' ')
		b = append(b, e.Detail...)
	}
	if e.Err != nil {
		b = append(b, " err="...)
		b = append(b, e.Err.Error()...)
	}
	c.buf = b

	if c.W == nil {
		println(string(b))
		return
	}
	b = append(b, '\r', '\n')
	_, _ = c.W.Write(b)
	c.buf = b[:0]
}
