package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/internal/auth"
	"github.com/staffdesk/apiserver/internal/db"
	"github.com/staffdesk/apiserver/internal/handlers"
	"github.com/staffdesk/apiserver/internal/mq"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/internal/storage"
	"github.com/staffdesk/apiserver/internal/store"
)

// Server wraps the HTTP server and the connections it owns.
type Server struct {
	httpServer *http.Server
	db         *sql.DB
	archive    *storage.Storage
	queue      *mq.MQ
}

var (
	openStorage = storage.Open
	openQueue   = mq.Open
)

// openBackends connects the optional archive and queue. Either may be nil
// when its backend is not configured. Nothing stays open on error.
func openBackends(ctx context.Context, cfg config.Config) (*storage.Storage, *mq.MQ, error) {
	archive, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	queue, err := openQueue(ctx, cfg.MQ)
	if err != nil {
		if archive != nil {
			_ = archive.Close()
		}
		return nil, nil, err
	}
	return archive, queue, nil
}

// New validates cfg, connects the database and the optional storage and
// queue backends, and wires the HTTP routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	archive, queue, err := openBackends(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	departmentRepo := store.NewDepartmentRepository(dbConn)
	employeeRepo := store.NewEmployeeRepository(dbConn)
	leaveRepo := store.NewLeaveRepository(dbConn)

	var notifier services.LeaveNotifier
	if queue != nil {
		notifier = services.NewMQLeaveNotifier(queue, cfg.MQ.LeaveEventsChannel)
		log.Printf("publishing leave events to %s via %s", cfg.MQ.LeaveEventsChannel, cfg.MQ.Backend)
	}
	var objectStore services.ObjectStore
	if archive != nil {
		objectStore = archive
		log.Printf("archiving employee exports in bucket %s", archive.Bucket())
	}

	authService := services.NewAuthService(userRepo, issuer, cfg.Auth)
	userService := services.NewUserService(userRepo)
	departmentService := services.NewDepartmentService(departmentRepo)
	employeeService := services.NewEmployeeService(employeeRepo, departmentRepo)
	leaveService := services.NewLeaveService(leaveRepo, employeeRepo, notifier, cfg.Leave)
	exportService := services.NewExportService(employeeRepo, objectStore)

	authMiddleware := handlers.RequireAuth(issuer)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authService, authMiddleware)
		})
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, authMiddleware)
		})
		r.Route("/departments", func(r chi.Router) {
			handlers.DepartmentRouter(r, departmentService, authMiddleware)
		})
		r.Route("/employees", func(r chi.Router) {
			handlers.EmployeeRouter(r, employeeService, exportService, authMiddleware)
		})
		r.Route("/leaves", func(r chi.Router) {
			handlers.LeaveRouter(r, leaveService, authMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		db:         dbConn,
		archive:    archive,
		queue:      queue,
	}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and releases the database, queue
// and archive.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.queue != nil {
		if qerr := s.queue.Close(); qerr != nil {
			log.Printf("failed to close message queue: %v", qerr)
		}
	}
	if s.archive != nil {
		if aerr := s.archive.Close(); aerr != nil {
			log.Printf("failed to close export archive: %v", aerr)
		}
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
