package display

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	mandel "github.com/marben/mandelzoom"
)

//go:embed static/index.html
var indexHTML []byte

const writeTimeout = 5 * time.Second

// Web serves a page that shows the animation and pushes every presented frame to
// connected browsers as a PNG websocket message. Slow clients skip frames instead of
// queueing them.
type Web struct {
	addr string
	log  *zap.Logger
	mux  *http.ServeMux
	enc  png.Encoder

	m       sync.Mutex
	latest  *image.RGBA
	version uint64
	encoded []byte
	encVer  uint64
	clients map[*webClient]struct{}
	err     error
}

type webClient struct {
	frames chan []byte
}

var _ mandel.Display = (*Web)(nil)

// NewWeb creates the web display. Extra handlers (e.g. "/metrics") are mounted next
// to the page and the websocket endpoint.
func NewWeb(addr string, log *zap.Logger, extra map[string]http.Handler) *Web {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Web{
		addr:    addr,
		log:     log,
		mux:     http.NewServeMux(),
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
		clients: make(map[*webClient]struct{}),
	}
	w.mux.HandleFunc("/", w.indexHandler)
	w.mux.HandleFunc("/ws", w.websocketHandler)
	w.mux.HandleFunc("/frame.png", w.frameHandler)
	for pattern, h := range extra {
		w.mux.Handle(pattern, h)
	}
	return w
}

func (w *Web) Handler() http.Handler { return w.mux }

// ListenAndServe serves until ctx is cancelled. A listener failure is reported here and
// by every later Present.
func (w *Web) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", w.addr)
	if err != nil {
		w.fail(err)
		return fmt.Errorf("net.Listen: %w", err)
	}

	srv := &http.Server{
		Handler:           w.mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("http shutdown", zap.Error(err))
		}
	}()

	w.log.Info("web display listening", zap.String("url", fmt.Sprintf("http://%s", l.Addr())))
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.fail(err)
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Present implements mandel.Display.
func (w *Web) Present(frame *image.RGBA) error {
	w.m.Lock()
	defer w.m.Unlock()

	if w.err != nil {
		return fmt.Errorf("web display: %w", w.err)
	}

	if w.latest == nil || w.latest.Rect != frame.Rect {
		w.latest = image.NewRGBA(frame.Rect)
	}
	copy(w.latest.Pix, frame.Pix)
	w.version++

	if len(w.clients) == 0 {
		return nil
	}
	data, err := w.encodeLocked()
	if err != nil {
		return err
	}
	for c := range w.clients {
		offer(c.frames, data)
	}
	return nil
}

// offer replaces whatever frame the client has not picked up yet.
func offer(ch chan []byte, data []byte) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- data:
	default:
	}
}

func (w *Web) encodeLocked() ([]byte, error) {
	if w.latest == nil {
		return nil, nil
	}
	if w.encoded != nil && w.encVer == w.version {
		return w.encoded, nil
	}
	var buf bytes.Buffer
	if err := w.enc.Encode(&buf, w.latest); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	// a fresh slice every time: clients may still be writing the previous one
	w.encoded = buf.Bytes()
	w.encVer = w.version
	return w.encoded, nil
}

func (w *Web) fail(err error) {
	w.m.Lock()
	w.err = err
	w.m.Unlock()
}

func (w *Web) subscribe() (*webClient, error) {
	c := &webClient{frames: make(chan []byte, 1)}

	w.m.Lock()
	defer w.m.Unlock()
	w.clients[c] = struct{}{}
	data, err := w.encodeLocked()
	if err != nil {
		return c, err
	}
	if data != nil {
		c.frames <- data
	}
	return c, nil
}

func (w *Web) unsubscribe(c *webClient) {
	w.m.Lock()
	delete(w.clients, c)
	w.m.Unlock()
}

func (w *Web) clientCount() int {
	w.m.Lock()
	defer w.m.Unlock()
	return len(w.clients)
}

func (w *Web) indexHandler(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(rw, r)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.Write(indexHTML)
}

func (w *Web) frameHandler(rw http.ResponseWriter, r *http.Request) {
	w.m.Lock()
	data, err := w.encodeLocked()
	w.m.Unlock()

	switch {
	case err != nil:
		http.Error(rw, err.Error(), http.StatusInternalServerError)
	case data == nil:
		http.Error(rw, "no frame yet", http.StatusServiceUnavailable)
	default:
		rw.Header().Set("Content-Type", "image/png")
		rw.Write(data)
	}
}

// websocketHandler streams frames to one browser until either side goes away.
func (w *Web) websocketHandler(rw http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(rw, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make allowed origins configurable
	})
	if err != nil {
		w.log.Warn("websocket accept", zap.Error(err))
		return
	}
	defer c.CloseNow()

	client, err := w.subscribe()
	defer w.unsubscribe(client)
	if err != nil {
		w.log.Error("subscribe", zap.Error(err))
		c.Close(websocket.StatusInternalError, "encode failed")
		return
	}
	w.log.Info("viewer connected", zap.String("remote", r.RemoteAddr), zap.Int("viewers", w.clientCount()))

	// we never expect messages from the browser; CloseRead notices when it leaves
	ctx := c.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("viewer disconnected", zap.String("remote", r.RemoteAddr))
			return
		case data := <-client.frames:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageBinary, data)
			cancel()
			if err != nil {
				w.log.Debug("websocket write", zap.String("remote", r.RemoteAddr), zap.Error(err))
				return
			}
		}
	}
}
