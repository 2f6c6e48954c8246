package api

import "strings"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAPIPrefix sets the prefix of the prediction routes, e.g. "/api/v1".
func WithAPIPrefix(prefix string) Option {
	return func(s *Server) {
		if strings.HasPrefix(prefix, "/") {
			s.apiPrefix = strings.TrimRight(prefix, "/")
		}
	}
}

// WithMaxHistoryLimit caps GET /predictions?limit.
func WithMaxHistoryLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxHistoryLimit = limit
		}
	}
}
