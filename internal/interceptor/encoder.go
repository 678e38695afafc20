package interceptor

import (
	"github.com/HaHaWTH/packetevents/internal/buffer"
	"github.com/HaHaWTH/packetevents/internal/connection"
	"github.com/HaHaWTH/packetevents/internal/event"
	"github.com/HaHaWTH/packetevents/internal/metrics"
	"github.com/HaHaWTH/packetevents/internal/pipeline"
)

// Encoder is the outbound interception stage of one connection. It
// mirrors the decoder's dispatch and cursor discipline but carries no
// compression-order branch: the decoder's one-time correction already
// repositions both stages.
type Encoder struct {
	conn    *connection.Connection
	events  *event.Manager
	metrics *metrics.AppMetrics // optional
}

func NewEncoder(conn *connection.Connection, em *event.Manager, am *metrics.AppMetrics) *Encoder {
	return &Encoder{conn: conn, events: em, metrics: am}
}

func (e *Encoder) HandleOutbound(ctx *pipeline.Context, in *buffer.Buffer) (*buffer.Buffer, error) {
	transformed := ctx.Alloc().Buffer().WriteBytes(in.Bytes())
	defer transformed.Release()

	firstReaderIndex := transformed.ReaderIndex()
	evt := &event.PacketEvent{Conn: e.conn, Dir: event.Outbound, Buffer: transformed}
	readerIndex := transformed.ReaderIndex()
	e.events.Dispatch(evt, func() {
		transformed.SetReaderIndex(readerIndex)
	})
	transformed.SetReaderIndex(firstReaderIndex)
	if e.metrics != nil {
		e.metrics.PacketsIntercepted.WithLabelValues(evt.Dir.String()).Inc()
	}

	if evt.Cancelled() {
		if e.metrics != nil {
			e.metrics.PacketsCancelled.WithLabelValues(evt.Dir.String()).Inc()
		}
		return nil, nil
	}
	return transformed.Retain(), nil
}
