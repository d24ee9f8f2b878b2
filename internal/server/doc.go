// Package server runs the short-lived HTTP listener behind "blendify auth".
//
// [BasicRouter] is a method-filtering wrapper around [http.ServeMux] with [Middleware] applied in reverse
// registration order. [OAuthHandler] serves the redirect URI path, checks the state token, trades the code
// through an [Exchanger] and reports exactly one [OAuthResult]; later callbacks are ignored.
package server
