package rpc

import (
	"ixichain/util"
	"ixichain/util/log"

	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RpcError is the error half of a {result, error, id} response
// envelope (spec.md §6.2).
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler is what a route hands its decoded request to. A non-nil
// RpcError short-circuits result encoding.
type Handler interface {
	Handle(req *http.Request) (result interface{}, rpcErr *RpcError)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req *http.Request) (interface{}, *RpcError)

func (f HandlerFunc) Handle(req *http.Request) (interface{}, *RpcError) { return f(req) }

type envelope struct {
	Result interface{} `json:"result,omitempty"`
	Error  *RpcError   `json:"error,omitempty"`
	Id     string      `json:"id,omitempty"`
}

// Gateway is the long-lived HTTP listener spec.md §4.7 describes: an
// optionally Basic-Auth-gated dispatcher in front of a set of routed
// Handlers, each response wrapped in a fixed JSON envelope.
type Gateway struct {
	Logger log.Logger

	server *http.Server
	router *mux.Router

	authUsers map[string]string
}

// NewGateway builds a Gateway bound to addr. authUsers may be nil or
// empty, in which case Basic-Auth is not enforced.
func NewGateway(addr string, authUsers map[string]string, logger log.Logger) *Gateway {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	router := mux.NewRouter()
	gw := &Gateway{
		Logger:    logger,
		router:    router,
		authUsers: authUsers,
	}
	gw.server = &http.Server{
		Addr:    addr,
		Handler: handlers.CombinedLoggingHandler(gatewayLogWriter{logger}, router),
	}
	return gw
}

// Route registers h to answer method+path, behind the auth middleware
// when an authorized-users table is configured.
func (gw *Gateway) Route(method, path string, h Handler) {
	wrapped := gw.authenticate(gw.dispatch(h))
	gw.router.HandleFunc(path, wrapped).Methods(method)
}

func (gw *Gateway) authenticate(next http.HandlerFunc) http.HandlerFunc {
	if len(gw.authUsers) == 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		want, known := gw.authUsers[user]
		if !ok || !known || want != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (gw *Gateway) dispatch(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, rpcErr := h.Handle(r)
		writeEnvelope(w, result, rpcErr)
	}
}

// requestIdLen is the length of the opaque id stamped on every
// response envelope, long enough to be useful for log correlation
// without cluttering the response body.
const requestIdLen = 12

func writeEnvelope(w http.ResponseWriter, result interface{}, rpcErr *RpcError) {
	bz, err := json.Marshal(envelope{Result: result, Error: rpcErr, Id: util.GenerateRandomId(requestIdLen)})
	if err != nil {
		bz, _ = json.Marshal(envelope{Error: &RpcError{Code: http.StatusInternalServerError, Message: err.Error()}, Id: util.GenerateRandomId(requestIdLen)})
	}

	status := http.StatusOK
	if rpcErr != nil {
		status = rpcErr.Code
		if status == 0 {
			status = http.StatusBadRequest
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(bz)))
	w.WriteHeader(status)
	w.Write(bz)
}

// Start begins accepting connections. It returns once the listener
// fails to bind; a clean Shutdown returns http.ErrServerClosed, which
// callers should treat as success.
func (gw *Gateway) Start() error {
	gw.Logger.Info("Starting RPC gateway", "addr", gw.server.Addr)
	return gw.server.ListenAndServe()
}

// Shutdown stops the accept loop, letting in-flight requests finish
// (spec.md §4.7: "Shutdown stops the listener and causes the accept
// loop to exit").
func (gw *Gateway) Shutdown(ctx context.Context) error {
	return gw.server.Shutdown(ctx)
}

type gatewayLogWriter struct {
	logger log.Logger
}

func (w gatewayLogWriter) Write(p []byte) (int, error) {
	w.logger.Info(string(p))
	return len(p), nil
}

