package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// Stage is one step of a request pipeline. It either returns the request to
// hand to the next stage (usually with a richer context) or an error that
// ends the pipeline. Returned *APIError values are written as-is.
type Stage struct {
	Name string
	Run  func(*http.Request) (*http.Request, error)
}

// Pipeline runs stages in order and calls h only if all of them pass. The
// first rejection is written and nothing after it runs.
func Pipeline(h http.Handler, stages ...Stage) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, st := range stages {
			next, err := st.Run(r)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("pipeline rejected", "stage", st.Name, "err", err)
				WriteError(w, r, err)
				return
			}
			if next != nil {
				r = next
			}
		}
		h.ServeHTTP(w, r)
	})
}

// Middleware adapts a stage for use with Chain.
func (s Stage) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return Pipeline(next, s)
	}
}
