package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// Probe checks one dependency. A failing critical probe fails readiness;
// any other failing probe only marks itself degraded.
type Probe struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// MongoProbe pings the audit log database.
func MongoProbe(db *mongo.Database) Probe {
	return Probe{Name: "mongodb", Critical: true, Check: func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}}
}

// RedisProbe pings the remote session store.
func RedisProbe(rdb *redis.Client) Probe {
	return Probe{Name: "redis", Critical: true, Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// BreakerProbe reports whether the remote API circuit accepts requests.
type BreakerProbe interface {
	Ready() bool
}

var errCircuitOpen = errors.New("circuit open")

// CircuitProbe reports the remote API circuit. Screens fail fast while it is
// open, but the console itself stays ready.
func CircuitProbe(b BreakerProbe) Probe {
	return Probe{Name: "roots_api", Check: func(context.Context) error {
		if !b.Ready() {
			return errCircuitOpen
		}
		return nil
	}}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	probes []Probe
}

func NewHealthHandler(probes ...Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness answers as long as the process serves requests.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness runs every probe.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	res := readinessResponse{Status: "ok", Dependencies: make(map[string]dependencyStatus, len(h.probes))}
	code := http.StatusOK
	for _, p := range h.probes {
		err := p.Check(ctx)
		switch {
		case err == nil:
			res.Dependencies[p.Name] = dependencyStatus{Status: "ok"}
		case p.Critical:
			res.Dependencies[p.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
		default:
			res.Dependencies[p.Name] = dependencyStatus{Status: "degraded", Error: err.Error()}
		}
	}
	return c.JSON(code, res)
}
