// Package obalog wires github.com/rs/zerolog into the wire codecs'
// ber.TraceSink interface.
//
//	sink := obalog.NewConsoleSink(obalog.Config{Level: "debug"})
//	dec := ldapmsg.NewEnvelopeDecoder()
//	dec.SetSink(sink.WithDecodeID())
//
// Core packages (ber, ldapmsg, filterexpr, dn, schema) never import this
// package or zerolog directly; they depend only on ber.TraceSink, with
// ber.NopSink as the zero-cost default.
package obalog
