package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/poolq/pool-server/config"
	"github.com/poolq/pool-server/pool"
)

type Server struct {
	config *config.Config

	ctx context.Context
	cfn context.CancelFunc

	mp    *sync.RWMutex
	pools map[string]*pool.Pool // pools keyed by name

	router *mux.Router
	reg    *prometheus.Registry

	srv  *http.Server
	msrv *http.Server
}

func New(ctx context.Context, c *config.Config) (*Server, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Server{
		config: c,
		ctx:    ctx,
		cfn:    cancel,

		mp:    &sync.RWMutex{},
		pools: make(map[string]*pool.Pool, len(c.Pools)),

		router: mux.NewRouter(),
		reg:    prometheus.NewRegistry(),
	}
	pool.RegisterMetrics(s.reg)
	for _, pc := range c.Pools {
		s.pools[pc.Name] = pool.New(pc)
	}
	s.routes()
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  time.Minute,
		WriteTimeout: 0, // wait and shutdown block for as long as jobs run
	}
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/pools", s.handleCreatePool).Methods(http.MethodPost)
	s.router.HandleFunc("/pools", s.handleListPools).Methods(http.MethodGet)
	s.router.HandleFunc("/pools/{pool}", s.handleGetPool).Methods(http.MethodGet)
	s.router.HandleFunc("/pools/{pool}", s.handleShutdownPool).Methods(http.MethodDelete)
	s.router.HandleFunc("/pools/{pool}/jobs", s.handleSubmitJob).Methods(http.MethodPost)
	s.router.HandleFunc("/pools/{pool}/wait", s.handleWaitPool).Methods(http.MethodPost)
}

func (s *Server) Serve(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.HTTPServer.Address)
	if err != nil {
		return err
	}
	if s.config.HTTPServer.TLS != nil {
		// the server context stops the cert watcher on Stop
		tlsCfg, err := s.config.HTTPServer.TLS.NewConfig(s.ctx)
		if err != nil {
			return err
		}
		l = tls.NewListener(l, tlsCfg)
	}
	log.Infof("running server on %s", s.config.HTTPServer.Address)
	g, _ := errgroup.WithContext(ctx)
	if s.config.Prometheus != nil {
		g.Go(s.serveMetrics)
	}
	g.Go(func() error {
		return s.srv.Serve(l)
	})
	return g.Wait()
}

func (s *Server) serveMetrics() error {
	s.reg.MustRegister(collectors.NewGoCollector())
	s.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	s.msrv = &http.Server{
		Addr:         s.config.Prometheus.Address,
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	err := s.msrv.ListenAndServe()
	if err != nil {
		log.Errorf("metrics server stopped: %v", err)
	}
	return err
}

func (s *Server) Stop() {
	if s.srv != nil {
		s.srv.Close()
	}
	if s.msrv != nil {
		s.msrv.Close()
	}
	s.mp.Lock()
	for _, p := range s.pools {
		p.Stop()
	}
	s.pools = make(map[string]*pool.Pool)
	s.mp.Unlock()
	s.cfn()
}
