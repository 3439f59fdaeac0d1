package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registrar mounts a set of related endpoints under a shared API group.
type Registrar interface {
	Mount(api *gin.RouterGroup)
}

// Router assembles the versioned API surface from registered groups.
type Router struct {
	engine  *gin.Engine
	version string
	groups  []Registrar
}

// Option configures the Router.
type Option func(*Router)

// WithVersion overrides the version segment of the API prefix.
func WithVersion(version string) Option {
	return func(r *Router) {
		r.version = version
	}
}

// New creates a Router mounting everything under /api/<version>.
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:  engine,
		version: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for mounting. Order is preserved.
func (r *Router) Register(groups ...Registrar) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Setup mounts every registered group on the versioned API prefix.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.version)
	for _, g := range r.groups {
		g.Mount(api)
	}
}

// Group is a declarative route table mounted under one path prefix.
// The ledger API has one group per resource (invoices, persons, system).
type Group struct {
	name   string
	prefix string
	routes []route
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewGroup creates a route group named after the resource it serves.
func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

// Handle appends a route to the table.
func (g *Group) Handle(method, path string, handler gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handler: handler})
	return g
}

func (g *Group) GET(path string, handler gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, handler)
}

func (g *Group) POST(path string, handler gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, handler)
}

func (g *Group) PUT(path string, handler gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, handler)
}

func (g *Group) PATCH(path string, handler gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPatch, path, handler)
}

func (g *Group) DELETE(path string, handler gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, handler)
}

// Mount implements Registrar.
func (g *Group) Mount(api *gin.RouterGroup) {
	grp := api.Group(g.prefix)
	for _, rt := range g.routes {
		grp.Handle(rt.method, rt.path, rt.handler)
	}
}

// Name returns the resource name the group serves.
func (g *Group) Name() string {
	return g.name
}

// Prefix returns the path prefix the group mounts under.
func (g *Group) Prefix() string {
	return g.prefix
}
