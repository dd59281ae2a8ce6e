package exportrouter

import (
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-tableexport/adapters/exportapi"
	"github.com/goliatone/go-tableexport/export"
)

// Config configures the go-router adapter.
type Config = exportapi.Config

// SourceParam is the route parameter holding the source name.
const SourceParam = "source"

// Handler exposes export routes for go-router.
type Handler struct {
	controller *exportapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: exportapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	r.Get(base, h.List)
	r.Get(base+"/", h.List)
	r.Get(base+"/:"+SourceParam, h.Download)
	r.Post(base+"/:"+SourceParam, h.Submit)
}

// Handle routes by path through the shared controller.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h.unavailable(c) {
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

// List writes the registered source names.
func (h *Handler) List(c router.Context) error {
	if c == nil || h.unavailable(c) {
		return nil
	}
	h.controller.HandleList(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

// Download exports the source named by the route parameter.
func (h *Handler) Download(c router.Context) error {
	if c == nil || h.unavailable(c) {
		return nil
	}
	h.controller.HandleDownload(routerRequest{ctx: c}, routerResponse{ctx: c}, c.Param(SourceParam))
	return nil
}

// Submit exports the source named by the route parameter using a JSON body.
func (h *Handler) Submit(c router.Context) error {
	if c == nil || h.unavailable(c) {
		return nil
	}
	h.controller.HandleSubmit(routerRequest{ctx: c}, routerResponse{ctx: c}, c.Param(SourceParam))
	return nil
}

func (h *Handler) unavailable(c router.Context) bool {
	if h == nil || h.controller == nil {
		exportapi.WriteError(routerResponse{ctx: c}, export.NewError(export.KindInternal, "handler is nil", nil))
		return true
	}
	return false
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return exportapi.DefaultBasePath
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
