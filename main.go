package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/mager/jukebox/config"
	"github.com/mager/jukebox/handler/health"
	jbHandler "github.com/mager/jukebox/handler/jukebox"
	"github.com/mager/jukebox/logger"
	"github.com/mager/jukebox/spotify"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Route is an http.Handler that knows the mux pattern
// under which it will be registered.
type Route interface {
	http.Handler

	// Pattern reports the path at which this is registered.
	Pattern() string
}

func main() {
	fx.New(
		fx.Provide(NewHTTPServer,
			config.Options,
			logger.Options,
			spotify.Options,
			jbHandler.Options,
		),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}

func NewHTTPServer(
	lc fx.Lifecycle,
	log *zap.SugaredLogger,
	cfg config.Config,
	spotifyClient *spotify.SpotifyClient,
	session *jbHandler.Session,
) *http.Server {
	mux := http.NewServeMux()

	jsonHandler := jsonMiddleware(mux)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: jsonHandler}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Infow("starting HTTP server", "addr", srv.Addr)
			go srv.Serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	// Define handlers
	for _, route := range []Route{
		health.NewHealthHandler(log, spotifyClient),
		jbHandler.NewLoadHandler(log, session, spotifyClient),
		jbHandler.NewGraphHandler(log, session),
		jbHandler.NewVizHandler(log, session),
		jbHandler.NewConfigHandler(log, session),
		jbHandler.NewEdgeHandler(log, session),
		jbHandler.NewStreamHandler(log, session),
	} {
		mux.Handle(route.Pattern(), route)
	}

	return srv
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
