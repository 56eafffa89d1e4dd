package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/csr/compiler/decl"
)

var resultType = decl.PointerTo(decl.ObjectOf(webPkg, "Result"))

func createController(methods ...*decl.Member) *decl.Declaration {
	d := createDecl("UserController", decl.Struct, decl.RoleController, methods...)
	d.Args[decl.ArgRoute] = "/users"
	return d
}

func route(m *decl.Member, verb, path string) *decl.Member {
	return withDirective(m, decl.DirHTTP, "", verb, path)
}

func TestController(t *testing.T) {
	tenant := createParam("tenant", stringType)
	tenant.Source, tenant.Key = decl.SourceHeader, "X-Tenant"
	get := route(createMethod("Get",
		[]*decl.Param{createParam("ctx", contextType), createParam("id", uuidType), tenant},
		decl.PointerTo(userType), decl.ErrorType,
	), "GET", "/{id}")
	create := route(createMethod("Create",
		[]*decl.Param{createParam("ctx", contextType), createParam("in", userType)},
		decl.PointerTo(userType), decl.ErrorType,
	), "post", "")
	search := route(createMethod("Search",
		[]*decl.Param{
			createParam("q", decl.PointerTo(stringType)),
			createParam("tags", decl.SliceOf(stringType)),
			createParam("status", statusType),
			createParam("ids", decl.PointerTo(decl.SliceOf(int64Type))),
		},
		decl.SliceOf(userType), decl.ErrorType,
	), "GET", "/search")
	remove := route(createMethod("Delete",
		[]*decl.Param{createParam("id", int64Type)},
		decl.ErrorType,
	), "DELETE", "/{id}")
	raw := route(createMethod("Raw",
		[]*decl.Param{createParam("c", decl.PointerTo(decl.ObjectOf(ginPkg, "Context")))},
		resultType,
	), "GET", "/raw")
	ping := route(createMethod("Ping", nil, stringType), "GET", "/ping")
	helper := createMethod("Helper", nil)

	e := newTestEmitter(t, createController(get, create, search, remove, raw, ping, helper))
	require.NoError(t, e.controller())
	require.NoError(t, e.registration())
	code := e.f.GoString()

	t.Run("Mount", func(t *testing.T) {
		assert.Contains(t, code, "func MountUserController(r *csr.Registry, router gin.IRouter) {")
		assert.Contains(t, code, `g := router.Group("/users")`)
		assert.Contains(t, code, `ctrl, err := csr.Resolve[*UserController](r, UserControllerKey)`)
		assert.NotContains(t, code, "Helper")
	})
	t.Run("RouteAndHeader", func(t *testing.T) {
		assert.Contains(t, code, `g.Handle(http.MethodGet, "/:id", func(c *gin.Context) {`)
		assert.Contains(t, code, `id, err := web.Required(web.Route(c, "id"), "id", web.UUID)`)
		assert.Contains(t, code, `tenant, err := web.Required(web.Header(c, "X-Tenant"), "tenant", web.String)`)
		assert.Contains(t, code, "res, err := ctrl.Get(web.Context(c), id, tenant)")
		assert.Contains(t, code, "web.Output(c, web.OK(res))")
	})
	t.Run("Body", func(t *testing.T) {
		assert.Contains(t, code, `g.Handle(http.MethodPost, "", func(c *gin.Context) {`)
		assert.Contains(t, code, `in, err := web.Body(c, "in", DecodeUser)`)
	})
	t.Run("Query", func(t *testing.T) {
		assert.Contains(t, code, `q, err := web.Optional(web.Query(c, "q"), "q", web.String)`)
		assert.Contains(t, code, `tags, err := web.RequiredList(web.QueryAll(c, "tags"), "tags", web.String)`)
		assert.Contains(t, code, `status, err := web.Required(web.Query(c, "status"), "status", web.String)`)
		assert.Contains(t, code, `idsList, err := web.List(web.QueryAll(c, "ids"), "ids", web.Int64)`)
		assert.Contains(t, code, "ids = &idsList")
		assert.Contains(t, code, "res, err := ctrl.Search(q, tags, Status(status), ids)")
		assert.Contains(t, code, "web.Output(c, web.OK(jsonx.SliceOf(res)))")
	})
	t.Run("ErrorOnly", func(t *testing.T) {
		assert.Contains(t, code, `g.Handle(http.MethodDelete, "/:id", func(c *gin.Context) {`)
		assert.Contains(t, code, `id, err := web.Required(web.Route(c, "id"), "id", web.Int64)`)
		assert.Contains(t, code, "if err := ctrl.Delete(id); err != nil {")
		assert.Contains(t, code, "web.Output(c, nil)")
	})
	t.Run("Results", func(t *testing.T) {
		assert.Contains(t, code, "res := ctrl.Raw(c)")
		assert.Contains(t, code, "web.Output(c, res)")
		assert.Contains(t, code, "web.Output(c, web.Text(http.StatusOK, res))")
	})
	t.Run("Registration", func(t *testing.T) {
		assert.Contains(t, code, `const UserControllerKey = "*example.com/app.UserController"`)
		assert.Contains(t, code, "r.AddController(UserControllerKey, MountUserController)")
	})
}

func TestController_NoRoutes(t *testing.T) {
	e := newTestEmitter(t, createController())
	require.NoError(t, e.controller())
	code := e.f.GoString()

	assert.Contains(t, code, "func MountUserController(r *csr.Registry, router gin.IRouter) {}")
	assert.NotContains(t, code, "router.Group")
}

func TestController_Errors(t *testing.T) {
	listRoute := createParam("ids", decl.SliceOf(int64Type))
	listRoute.Source = decl.SourceRoute
	ctxSource := createParam("id", int64Type)
	ctxSource.Source = decl.SourceContext
	tests := []struct {
		name   string
		m      *decl.Member
		errMsg string
	}{
		{
			name:   "UnknownVerb",
			m:      route(createMethod("Get", nil, decl.ErrorType), "FETCH", "/"),
			errMsg: `unknown HTTP method "FETCH"`,
		},
		{
			name:   "MapParameter",
			m:      route(createMethod("Get", []*decl.Param{createParam("m", decl.OtherOf("map[string]string"))}, decl.ErrorType), "GET", "/"),
			errMsg: "cannot bind parameter m",
		},
		{
			name:   "ListFromRoute",
			m:      route(createMethod("Get", []*decl.Param{listRoute}, decl.ErrorType), "GET", "/{ids}"),
			errMsg: "a route variable holds one value",
		},
		{
			name:   "ContextSource",
			m:      route(createMethod("Get", []*decl.Param{ctxSource}, decl.ErrorType), "GET", "/"),
			errMsg: "cannot bind parameter id",
		},
		{
			name:   "ListBody",
			m:      route(createMethod("Post", []*decl.Param{createParam("users", decl.SliceOf(userType))}, decl.ErrorType), "POST", "/"),
			errMsg: "cannot bind parameter users",
		},
		{
			name:   "UnsupportedResult",
			m:      route(createMethod("Get", nil, decl.OtherOf("map[string]int"), decl.ErrorType), "GET", "/"),
			errMsg: "unsupported result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestEmitter(t, createController(tt.m)).controller()
			require.Error(t, err)
			assert.True(t, IsDeclarationError(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGinPath(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"/users":          "/users",
		"/{id}":           "/:id",
		"/{id}/items/{n}": "/:id/items/:n",
		"/files/{*path}":  "/files/*path",
		"/{not a var}/x":  "/{not a var}/x",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ginPath(in))
		})
	}
}
