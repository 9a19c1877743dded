// Package router mounts the route groups of a service on a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is anything that can mount its routes on a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Route describes one mounted endpoint
type Route struct {
	Group  string
	Method string
	Path   string
}

// Router collects registrars and mounts them on Setup
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a Router. Routes are mounted at the engine root.
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register queues registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts all registrars and returns the routes of the domain groups
// among them, with full paths.
func (r *Router) Setup() []Route {
	group := &r.engine.RouterGroup
	var routes []Route
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(group)
		if dg, ok := registrar.(*DomainGroup); ok {
			routes = append(routes, dg.Routes(group.BasePath())...)
		}
	}
	return routes
}

// DomainGroup is the set of routes of one domain (cart, catalogue, system)
// sharing a prefix.
type DomainGroup struct {
	name      string
	prefix    string
	endpoints []endpoint
}

type endpoint struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Handle adds a route for an arbitrary method
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.endpoints = append(dg.endpoints, endpoint{method: method, path: relativePath, handlers: handlers})
	return dg
}

// GET adds a GET route
func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relativePath, handlers...)
}

// DELETE adds a DELETE route
func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relativePath, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, e := range dg.endpoints {
		group.Handle(e.method, e.path, e.handlers...)
	}
}

// Routes lists the group's endpoints as mounted under base
func (dg *DomainGroup) Routes(base string) []Route {
	base = joinPath(base, dg.prefix)
	routes := make([]Route, 0, len(dg.endpoints))
	for _, e := range dg.endpoints {
		routes = append(routes, Route{Group: dg.name, Method: e.method, Path: joinPath(base, e.path)})
	}
	return routes
}

// joinPath joins like gin does, keeping a trailing slash of rel
func joinPath(base, rel string) string {
	if rel == "" {
		return base
	}
	joined := path.Join(base, rel)
	if rel[len(rel)-1] == '/' && joined[len(joined)-1] != '/' {
		return joined + "/"
	}
	return joined
}
