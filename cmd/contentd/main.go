// Command contentd serves blog posts, projects and learning modules through
// the content caches, with Prometheus metrics and admin cache endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/contentcache/internal/auth"
	"github.com/IvanBrykalov/contentcache/internal/content"
	"github.com/IvanBrykalov/contentcache/internal/httpapi"
	"github.com/IvanBrykalov/contentcache/internal/site"
	"github.com/IvanBrykalov/contentcache/registry"
)

type config struct {
	addr       string
	db         string
	static     string
	dev        bool
	janitor    time.Duration
	coalesce   bool
	jwtSecret  string
	printToken bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.addr, "addr", ":8080", "HTTP listen address")
	flag.StringVar(&cfg.db, "db", "content.db", "SQLite database path")
	flag.StringVar(&cfg.static, "static", "", "directory served under /static; empty = disabled")
	flag.BoolVar(&cfg.dev, "dev", false, "development mode: verbose logs and the cache janitor")
	flag.DurationVar(&cfg.janitor, "janitor", registry.DefaultJanitorInterval, "cache cleanup interval in development mode")
	flag.BoolVar(&cfg.coalesce, "coalesce", false, "share one backend load among concurrent misses for a key")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("CONTENTD_JWT_SECRET"), "HS256 secret for admin tokens (env CONTENTD_JWT_SECRET); empty disables /admin")
	flag.BoolVar(&cfg.printToken, "print-token", false, "print an admin token and exit")
	flag.Parse()

	log, err := newLogger(cfg.dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("contentd stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config, log *zap.Logger) error {
	var issuer *auth.Issuer
	if cfg.jwtSecret != "" {
		issuer = &auth.Issuer{Secret: []byte(cfg.jwtSecret), Issuer: "contentd", Audience: "contentd-admin"}
	}
	if cfg.printToken {
		if issuer == nil {
			return errors.New("-print-token needs -jwt-secret")
		}
		tok, err := issuer.Generate("admin")
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	}

	store, err := content.Open(cfg.db)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	siteCfg := site.DefaultConfig()
	siteCfg.Coalesce = cfg.coalesce
	caches, err := site.NewCaches(siteCfg, site.Deps{Registerer: reg, Logger: log.Named("cache")})
	if err != nil {
		return err
	}

	var assets fs.FS
	if cfg.static != "" {
		assets = os.DirFS(cfg.static)
	}
	loader := site.NewLoader(store, caches, assets, log.Named("loader"))

	if !cfg.dev {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr: cfg.addr,
		Handler: httpapi.NewServer(loader, httpapi.Options{
			Issuer:   issuer,
			Gatherer: reg,
			Logger:   log.Named("http"),
		}).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.addr), zap.Bool("admin", issuer != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.dev {
		g.Go(func() error {
			err := caches.Registry.Run(ctx, cfg.janitor)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
