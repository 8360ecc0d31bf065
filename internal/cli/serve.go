package cli

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/docmill/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr string
	dir  string
}

// serveCommand creates the serve command, a local static file server for
// previewing a generated docs tree.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "localhost:8080", dir: "."}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a generated docs tree for local preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.dir, "dir", opts.dir, "docs directory to serve")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestHooks)
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	srv := &http.Server{Addr: opts.addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	printInfo("Serving %s", dir)
	printDetail("http://%s", opts.addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// requestHooks notifies the registered HTTP hooks around each request.
func requestHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(req.Context(), req.Method, req.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		hooks.OnResponse(req.Context(), req.Method, req.URL.Path, ww.Status(), time.Since(start))
	})
}
