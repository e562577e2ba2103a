// FILE: fieldwisp/src/internal/special/http_request.go
package special

import (
	"fieldwisp/src/internal/value"
)

// HTTPRequest is the logging.googleapis.com/http_request special field
type HTTPRequest struct {
	RequestMethod string
	RequestURL    string
	UserAgent     string
	RemoteIP      string
	ServerIP      string
	Referer       string
	Protocol      string
	// Latency is the canonical "<seconds>[.<fraction>]s" token or empty
	Latency string

	RequestSize    int64
	ResponseSize   int64
	Status         int64
	CacheFillBytes int64

	CacheLookup                    bool
	CacheHit                       bool
	CacheValidatedWithOriginServer bool

	// LatencyRejected is set when a latency string failed the duration grammar
	LatencyRejected bool

	Subfields
}

func ExtractHTTPRequest(payload *value.Map) HTTPRequest {
	var req HTTPRequest
	sub, ok := findMap(payload, HTTPRequestKey)
	if !ok {
		return req
	}

	str := func(dst *string, v value.Value) {
		if s, ok := CoerceString(v); ok {
			*dst = s
		}
	}
	num := func(dst *int64, v value.Value) {
		if n, ok := CoerceInteger(v); ok {
			*dst = n
		}
	}
	flag := func(dst *bool, v value.Value) {
		if b, ok := CoerceBool(v); ok {
			*dst = b
		}
	}

	req.walk(sub, func(k string, v value.Value) bool {
		switch k {
		case "latency":
			if s, ok := CoerceString(v); ok {
				if canonical, ok := CanonicalLatency(s); ok {
					req.Latency = canonical
				} else {
					req.LatencyRejected = true
				}
			}
		case "requestMethod":
			str(&req.RequestMethod, v)
		case "requestUrl":
			str(&req.RequestURL, v)
		case "userAgent":
			str(&req.UserAgent, v)
		case "remoteIp":
			str(&req.RemoteIP, v)
		case "serverIp":
			str(&req.ServerIP, v)
		case "referer":
			str(&req.Referer, v)
		case "protocol":
			str(&req.Protocol, v)
		case "requestSize":
			num(&req.RequestSize, v)
		case "responseSize":
			num(&req.ResponseSize, v)
		case "status":
			num(&req.Status, v)
		case "cacheFillBytes":
			num(&req.CacheFillBytes, v)
		case "cacheLookup":
			flag(&req.CacheLookup, v)
		case "cacheHit":
			flag(&req.CacheHit, v)
		case "cacheValidatedWithOriginServer":
			flag(&req.CacheValidatedWithOriginServer, v)
		default:
			return false
		}
		return true
	})
	return req
}

// Value builds the promoted httpRequest map: 14 keys, or 15 with latency
// first when one was accepted.
func (r HTTPRequest) Value() value.Value {
	m := value.NewMap(15)
	if r.Latency != "" {
		m.Set("latency", value.String(r.Latency))
	}
	m.Set("requestMethod", value.String(r.RequestMethod))
	m.Set("requestUrl", value.String(r.RequestURL))
	m.Set("userAgent", value.String(r.UserAgent))
	m.Set("remoteIp", value.String(r.RemoteIP))
	m.Set("serverIp", value.String(r.ServerIP))
	m.Set("referer", value.String(r.Referer))
	m.Set("protocol", value.String(r.Protocol))
	m.Set("requestSize", value.Int(r.RequestSize))
	m.Set("responseSize", value.Int(r.ResponseSize))
	m.Set("status", value.Int(r.Status))
	m.Set("cacheFillBytes", value.Int(r.CacheFillBytes))
	m.Set("cacheLookup", value.Bool(r.CacheLookup))
	m.Set("cacheHit", value.Bool(r.CacheHit))
	m.Set("cacheValidatedWithOriginServer", value.Bool(r.CacheValidatedWithOriginServer))
	return value.FromMap(m)
}
