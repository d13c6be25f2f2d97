package api

import (
	"net/http"
	"strings"

	"github.com/permalinkapp/permalink-server/internal/errors"
	"github.com/permalinkapp/permalink-server/internal/http/response"
)

// kindPrefixes are the path segments that can follow the base path on a
// friendly URL. Season and episode URLs nest under /show/.
var kindPrefixes = []string{
	"/movie/",
	"/show/",
	"/person/",
	"/collection/",
	"/genre/",
	"/studio/",
}

// isFriendlyPath reports whether the request path can be a friendly URL
// under the current base path. Non-candidates skip the store entirely.
func (s *Server) isFriendlyPath(path string) bool {
	base := strings.ToLower(s.mappings.Settings().Base())
	rest, ok := strings.CutPrefix(strings.ToLower(path), base)
	if !ok {
		return false
	}
	for _, prefix := range kindPrefixes {
		if strings.HasPrefix(rest, prefix) {
			return true
		}
	}
	return false
}

// handleResolve is the redirect gateway. It receives every request no other
// route claimed, looks the path up as a friendly URL, and answers with a
// permanent redirect to the stored item-detail URL. The query string plays
// no part in matching.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		response.NotFound(w, "not found", s.logger)
		return
	}

	if !s.isFriendlyPath(r.URL.Path) {
		response.NotFound(w, "not found", s.logger)
		return
	}

	mapping, err := s.mappings.Resolve(r.Context(), r.URL.Path)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			// A storage failure looks like a miss to the visitor.
			s.logger.Error("failed to resolve friendly URL",
				"path", r.URL.Path,
				"error", err)
		}
		response.NotFound(w, "no mapping for this URL", s.logger)
		return
	}

	http.Redirect(w, r, mapping.OriginalURL, http.StatusMovedPermanently)
}
