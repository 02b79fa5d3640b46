package middleware

import (
	"mime"
	"net/http"
	"strings"
)

const (
	MethodOverrideHeader = "X-HTTP-Method-Override"
	MethodOverrideField  = "_method"
)

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets clients that can only POST (HTML forms) reach PUT,
// PATCH and DELETE routes. The method is read from the X-HTTP-Method-Override
// header, the _method query parameter, or the _method form field.
//
// It wraps the engine rather than running as gin middleware because gin
// selects the route before any middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := strings.ToUpper(overrideMethod(r)); overridable[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) string {
	if m := r.Header.Get(MethodOverrideHeader); m != "" {
		return m
	}
	if m := r.URL.Query().Get(MethodOverrideField); m != "" {
		return m
	}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		// ParseForm keeps the parsed body in r.PostForm for later binding.
		if err := r.ParseForm(); err == nil {
			return r.PostForm.Get(MethodOverrideField)
		}
	}
	return ""
}
