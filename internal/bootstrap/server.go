package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/classbooking/api"
	"github.com/Domenick1991/classbooking/config"
	studioapi "github.com/Domenick1991/classbooking/internal/api/studio_service_api"
	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/service/attendance"
	"github.com/Domenick1991/classbooking/internal/service/booking"
	"github.com/Domenick1991/classbooking/internal/service/profile"
	"github.com/Domenick1991/classbooking/internal/service/schedule"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Schedule   schedule.ScheduleUseCase
	Templates  schedule.TemplateUseCase
	Booking    booking.BookingUseCase
	Attendance attendance.AttendanceUseCase
	Profile    profile.ProfileUseCase
}

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or
// one of them fails. Both are stopped gracefully either way.
func Run(ctx context.Context, cfg *config.Config, svcs Services) error {
	s := newServers(cfg, svcs)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("gRPC listening on %s", cfg.GRPC.Address)
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("HTTP listening on %s", cfg.HTTP.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})
	return g.Wait()
}

func (s *Servers) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func newServers(cfg *config.Config, svcs Services) *Servers {
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	grpcSrv, hs := NewGRPCServer(verifier, svcs)

	return &Servers{
		grpcServer: grpcSrv,
		health:     hs,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewRouter(cfg, verifier, svcs),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewGRPCServer registers the studio service and the standard health service.
func NewGRPCServer(verifier *auth.Verifier, svcs Services) (*grpc.Server, *health.Server) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(auth.UnaryServerInterceptor(verifier)))
	studioapi.RegisterStudioServiceServer(grpcSrv, studioapi.NewServer(svcs.Schedule, svcs.Booking, svcs.Attendance))

	hs := health.NewServer()
	hs.SetServingStatus(studioapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, hs)
	return grpcSrv, hs
}

func NewRouter(cfg *config.Config, verifier *auth.Verifier, svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
	} else {
		router.GET("/swagger/studio.swagger.json", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", api.SwaggerJSON)
		})
	}
	router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/studio.swagger.json"))))

	group := router.Group("/api", auth.GinMiddleware(verifier))
	api.NewCallableHandler(svcs.Schedule, svcs.Booking, svcs.Attendance).Register(group)
	api.NewScheduleHandler(svcs.Schedule, svcs.Booking, svcs.Profile, cfg.HomeLocation()).Register(group)
	api.NewTemplateHandler(svcs.Templates).Register(group.Group("/templates"))

	return router
}
