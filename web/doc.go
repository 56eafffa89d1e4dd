// Package web is the HTTP runtime of generated controllers.
//
// A generated Mount function registers one gin handler per controller
// action. The handler reads each parameter from its binding source (Route,
// Query, Header, Body or the request context), converts it with a Parser
// through Required, Optional or List, calls the action and writes its
// Result with Output. Conversion failures answer 400 through Fail.
package web
