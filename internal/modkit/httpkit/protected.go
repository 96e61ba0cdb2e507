package httpkit

import "ballotgate/internal/platform/net/middleware"

// Protected groups routes under bearer auth
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}

// ProtectedFor groups routes under bearer auth limited to participants of classes
func ProtectedFor(r Router, p middleware.AuthPort, classes []string, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p), RequireClass(classes...))
		fn(gr)
	})
}
