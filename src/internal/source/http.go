// FILE: fieldwisp/src/internal/source/http.go
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/limit"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// HTTPSource receives records via HTTP POST requests
type HTTPSource struct {
	*fanout
	config        *config.HTTPSourceOptions
	server        *fasthttp.Server
	listener      net.Listener
	clientLimiter *limit.ClientLimiter
	wg            sync.WaitGroup
	stopOnce      sync.Once
	logger        *log.Logger
}

func NewHTTPSource(opts *config.HTTPSourceOptions, logger *log.Logger) (*HTTPSource, error) {
	if opts == nil {
		return nil, fmt.Errorf("http source options cannot be nil")
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("http source requires a valid port, got %d", opts.Port)
	}
	if opts.IngestPath == "" {
		opts.IngestPath = "/ingest"
	}

	h := &HTTPSource{
		fanout: newFanout("http_source", opts.BufferSize, logger),
		config: opts,
		logger: logger,
	}

	if cl := opts.ClientLimit; cl != nil && cl.Enabled {
		h.clientLimiter = limit.NewClientLimiter(cl.RequestsPerSecond, int(cl.BurstSize),
			time.Duration(cl.CleanupIntervalSec)*time.Second)
	}

	return h, nil
}

func (h *HTTPSource) Start() error {
	h.server = &fasthttp.Server{
		Name:               "fieldwisp",
		Handler:            h.requestHandler,
		MaxRequestBodySize: int(h.config.MaxRequestBodySize),
		ReadTimeout:        time.Duration(h.config.ReadTimeout) * time.Millisecond,
		WriteTimeout:       time.Duration(h.config.WriteTimeout) * time.Millisecond,
		CloseOnShutdown:    true,
	}

	host := h.config.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", h.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	h.listener = ln

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.server.Serve(ln); err != nil {
			h.logger.Error("msg", "HTTP source server failed",
				"component", "http_source",
				"addr", ln.Addr().String(),
				"error", err)
		}
	}()

	h.logger.Info("msg", "HTTP source started",
		"component", "http_source",
		"addr", ln.Addr().String(),
		"ingest_path", h.config.IngestPath)
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (h *HTTPSource) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

func (h *HTTPSource) Stop() {
	h.stopOnce.Do(func() {
		h.logger.Info("msg", "Stopping HTTP source", "component", "http_source")

		if h.server != nil {
			if err := h.server.Shutdown(); err != nil {
				h.logger.Error("msg", "Error shutting down HTTP source server",
					"component", "http_source",
					"error", err)
			}
		}
		if h.clientLimiter != nil {
			h.clientLimiter.Stop()
		}

		h.wg.Wait()
		h.closeSubscribers()

		h.logger.Info("msg", "HTTP source stopped", "component", "http_source")
	})
}

func (h *HTTPSource) GetStats() SourceStats {
	details := map[string]any{
		"addr":        h.Addr(),
		"ingest_path": h.config.IngestPath,
		"codec":       h.config.Codec,
	}
	if h.clientLimiter != nil {
		details["client_limit"] = h.clientLimiter.GetStats()
	}
	return h.stats("http", details)
}

func (h *HTTPSource) requestHandler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != h.config.IngestPath {
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{
			"error": "Not Found",
			"hint":  fmt.Sprintf("POST records to %s", h.config.IngestPath),
		})
		return
	}
	if !ctx.IsPost() {
		ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]string{
			"error": "Method Not Allowed",
		})
		return
	}

	if h.clientLimiter != nil && !h.clientLimiter.Allow(ctx.RemoteIP().String()) {
		writeJSON(ctx, fasthttp.StatusTooManyRequests, map[string]string{
			"error": "Rate limit exceeded",
		})
		return
	}

	body := ctx.PostBody()
	if bytes.EqualFold(ctx.Request.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		unzipped, err := gunzipLimited(body, h.bodyLimit())
		if errors.Is(err, errBodyTooLarge) {
			h.invalidEntries.Add(1)
			writeJSON(ctx, fasthttp.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("Decompressed body exceeds %d bytes", h.bodyLimit()),
			})
			return
		}
		if err != nil {
			h.invalidEntries.Add(1)
			writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Invalid gzip body: %v", err),
			})
			return
		}
		body = unzipped
	}

	if len(body) == 0 {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{
			"error": "Empty request body",
		})
		return
	}

	codec := codecForContentType(string(ctx.Request.Header.ContentType()), h.config.Codec)
	entries, err := decodeBody(body, codec, "http", time.Now())
	if err != nil {
		h.invalidEntries.Add(1)
		h.logger.Debug("msg", "Rejected HTTP ingest body",
			"component", "http_source",
			"remote", ctx.RemoteAddr().String(),
			"codec", codec,
			"error", err)
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Invalid record format: %v", err),
		})
		return
	}

	for _, entry := range entries {
		h.publish(entry)
	}

	writeJSON(ctx, fasthttp.StatusAccepted, map[string]any{
		"accepted": len(entries),
	})
}

var errBodyTooLarge = errors.New("request body too large")

// bodyLimit caps both the raw and the decompressed request body
func (h *HTTPSource) bodyLimit() int64 {
	if h.config.MaxRequestBodySize > 0 {
		return h.config.MaxRequestBodySize
	}
	return fasthttp.DefaultMaxRequestBodySize
}

// gunzipLimited inflates body, failing with errBodyTooLarge once the output
// passes limit bytes.
func gunzipLimited(body []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, errBodyTooLarge
	}
	return out, nil
}

// codecForContentType maps a media type to a record codec
func codecForContentType(contentType, fallback string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch mediaType {
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return config.CodecMsgpack
	case "application/json", "application/x-ndjson", "application/jsonlines":
		return config.CodecJSON
	}
	if fallback == "" {
		return config.CodecJSON
	}
	return fallback
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(body); err != nil {
		ctx.SetBodyString(`{"error":"response encoding failed"}`)
	}
}
