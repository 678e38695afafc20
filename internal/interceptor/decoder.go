// Package interceptor implements the interception stages installed into a
// connection's pipeline: a decoder for inbound frames and an encoder for
// outbound frames. Each pass copies the frame into a working buffer,
// dispatches it to the listener chain, and forwards the (possibly
// rewritten) bytes while keeping buffer references strictly balanced.
package interceptor

import (
	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/compression"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/event"
	"github.com/HaHaWTH/packetevents/internal/metrics"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
)

// Default stage names under which the interception pair is installed.
const (
	DecoderName = "pe-decoder"
	EncoderName = "pe-encoder"
)

// Decoder is the inbound interception stage of one connection.
type Decoder struct {
	conn        *connection.Connection
	compression *compression.Manager
	events      *event.Manager
	metrics     *metrics.AppMetrics // optional
}

func NewDecoder(conn *connection.Connection, cm *compression.Manager, em *event.Manager, am *metrics.AppMetrics) *Decoder {
	return &Decoder{conn: conn, compression: cm, events: em, metrics: am}
}

// HandleInbound runs one interception pass.
//
// The skip flag short-circuits exactly one pass: the corrective
// recompression hands the frame back to the host's decompress stage,
// which re-enters this stage with bytes that were already dispatched.
func (d *Decoder) HandleInbound(ctx *pipeline.Context, in *buffer.Buffer) (*buffer.Buffer, error) {
	if d.conn.TakeSkipTransform() {
		return in.Retain(), nil
	}

	transformed := ctx.Alloc().Buffer().WriteBytes(in.Bytes())
	defer transformed.Release()

	needsCompress, err := d.compression.HandleOrder(d.conn, transformed)
	if err != nil {
		return nil, err
	}

	firstReaderIndex := transformed.ReaderIndex()
	evt := &event.PacketEvent{Conn: d.conn, Dir: event.Inbound, Buffer: transformed}
	readerIndex := transformed.ReaderIndex()
	d.events.Dispatch(evt, func() {
		transformed.SetReaderIndex(readerIndex)
	})
	transformed.SetReaderIndex(firstReaderIndex)
	if d.metrics != nil {
		d.metrics.PacketsIntercepted.WithLabelValues(evt.Dir.String()).Inc()
	}

	if evt.Cancelled() {
		if d.metrics != nil {
			d.metrics.PacketsCancelled.WithLabelValues(evt.Dir.String()).Inc()
		}
		return nil, nil
	}

	if needsCompress {
		if err := d.compression.Recompress(d.conn, transformed); err != nil {
			return nil, err
		}
		d.conn.SetSkipTransform()
		if d.metrics != nil {
			d.metrics.CompressionCorrections.Inc()
		}
	}
	return transformed.Retain(), nil
}
