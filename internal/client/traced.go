package client

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/rs/zerolog"
)

// NetworkMetrics breaks down where the time of one request went.
type NetworkMetrics struct {
	ConnWait   time.Duration
	ConnReused bool
	DNS        time.Duration
	TCP        time.Duration
	TLS        time.Duration
	ReqHeaders time.Duration
	ReqBody    time.Duration
	TTFB       time.Duration
	Download   time.Duration
	Total      time.Duration
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (m *NetworkMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Dur("conn_wait", m.ConnWait).
		Bool("conn_reused", m.ConnReused).
		Dur("dns", m.DNS).
		Dur("tcp", m.TCP).
		Dur("tls", m.TLS).
		Dur("req_headers", m.ReqHeaders).
		Dur("req_body", m.ReqBody).
		Dur("ttfb", m.TTFB).
		Dur("download", m.Download).
		Dur("total", m.Total)
}

// tracedResponse is a fully read response plus its timing.
type tracedResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Metrics    *NetworkMetrics
}

// doTraced sends req with an httptrace hook attached and reads the whole body.
// Metrics are returned even when the request fails part way.
func doTraced(hc *http.Client, req *http.Request) (*tracedResponse, *NetworkMetrics, error) {
	metrics := &NetworkMetrics{}
	var getConnStart, dnsStart, tcpStart, tlsStart time.Time
	var gotConn, wroteHeaders, wroteRequest, firstByte time.Time

	trace := &httptrace.ClientTrace{
		GetConn: func(_ string) { getConnStart = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			gotConn = time.Now()
			metrics.ConnWait = gotConn.Sub(getConnStart)
			metrics.ConnReused = info.Reused
		},
		DNSStart:          func(_ httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { metrics.DNS = time.Since(dnsStart) },
		ConnectStart:      func(_, _ string) { tcpStart = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { metrics.TCP = time.Since(tcpStart) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { metrics.TLS = time.Since(tlsStart) },
		WroteHeaders: func() {
			wroteHeaders = time.Now()
			metrics.ReqHeaders = wroteHeaders.Sub(gotConn)
		},
		WroteRequest: func(_ httptrace.WroteRequestInfo) {
			wroteRequest = time.Now()
			metrics.ReqBody = wroteRequest.Sub(wroteHeaders)
		},
		GotFirstResponseByte: func() {
			firstByte = time.Now()
			metrics.TTFB = firstByte.Sub(wroteRequest)
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	reqStart := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		metrics.Total = time.Since(reqStart)
		return nil, metrics, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	metrics.Total = time.Since(reqStart)
	if err != nil {
		return nil, metrics, err
	}
	if !firstByte.IsZero() {
		metrics.Download = time.Since(firstByte)
	}

	return &tracedResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Metrics:    metrics,
	}, metrics, nil
}
