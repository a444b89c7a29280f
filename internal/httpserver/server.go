package httpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallart-proxy/common"
	"wallart-proxy/internal/compose"
	"wallart-proxy/internal/lister"
	"wallart-proxy/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// 对外路由
const (
	RouteListModels   = "/api/listModels"
	RouteProcessImage = "/api/processImage"
	RouteHealth       = "/healthz"
	RouteMetrics      = "/metrics"
)

const shutdownTimeout = 5 * time.Second

// Options HTTP 服务配置
type Options struct {
	Addr          string
	BodyLimitMB   int
	TrustedDomain string
}

// Deps HTTP 服务依赖，Metrics 可以为 nil
type Deps struct {
	Lister   *lister.Service
	Composer *compose.Service
	Metrics  *metrics.Recorder
}

// Server 封装 Fiber 应用
type Server struct {
	app  *fiber.App
	addr string
}

// New 创建 HTTP 服务并注册路由
func New(opts Options, deps Deps) (*Server, error) {
	if deps.Lister == nil || deps.Composer == nil {
		return nil, fmt.Errorf("lister and composer are required")
	}
	if opts.TrustedDomain == "" {
		return nil, fmt.Errorf("trusted domain is required")
	}
	bodyLimitMB := opts.BodyLimitMB
	if bodyLimitMB <= 0 {
		bodyLimitMB = 20
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ServerHeader:          "wallart-proxy",
		BodyLimit:             bodyLimitMB * 1024 * 1024,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(accessLog(deps.Metrics))
	app.Use(recover.New())

	h := &handlers{
		lister:        deps.Lister,
		composer:      deps.Composer,
		trustedDomain: opts.TrustedDomain,
	}
	app.All(RouteListModels, h.listModels)
	app.All(RouteProcessImage, h.processImage)
	app.Get(RouteHealth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get(RouteMetrics, adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	return &Server{app: app, addr: opts.Addr}, nil
}

// App 返回底层 Fiber 应用（测试使用 App().Test）
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen 阻塞直到 ctx 取消或监听失败，ctx 取消后优雅关闭
func (s *Server) Listen(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := s.app.ShutdownWithContext(shutdownCtx)
		if err == nil {
			err = <-errCh
		}
		return err
	case err := <-errCh:
		return err
	}
}

// accessLog 记录访问日志与 HTTP 指标
func accessLog(recorder *metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		recorder.ObserveHTTP(c.Method(), route, status, elapsed)

		common.WithFields(map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}).Info("HTTP request")
		return err
	}
}

// errorHandler 把 Fiber 内部错误（404、413 等）统一成 JSON 错误体
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := err.Error()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	} else {
		common.WithError(err).Error("Unhandled request error")
	}
	return writeError(c, status, msg)
}
