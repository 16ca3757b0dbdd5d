package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/radiologia/internal/config"
	"github.com/ehr/radiologia/internal/domain/identity"
	"github.com/ehr/radiologia/internal/domain/imagen"
	"github.com/ehr/radiologia/internal/domain/informe"
	"github.com/ehr/radiologia/internal/platform/blobstore"
	"github.com/ehr/radiologia/internal/platform/db"
	"github.com/ehr/radiologia/internal/platform/middleware"
	"github.com/ehr/radiologia/internal/platform/prediction"
	"github.com/ehr/radiologia/internal/platform/telemetry"
)

// stores holds one backend's repositories. health is nil for the memory
// backend.
type stores struct {
	medicos   identity.MedicoRepository
	pacientes identity.PacienteRepository
	imagenes  imagen.Repository
	informes  informe.Repository
	blobs     blobstore.BlobStore
	tx        db.TxRunner
	health    db.HealthChecker
}

func memoryStores(maxUpload int64) stores {
	return stores{
		medicos:   identity.NewMedicoRepoMemory(),
		pacientes: identity.NewPacienteRepoMemory(),
		imagenes:  imagen.NewRepoMemory(),
		informes:  informe.NewRepoMemory(),
		blobs:     blobstore.NewInMemoryBlobStore(maxUpload),
		tx:        db.NoTx(),
	}
}

func postgresStores(pool *pgxpool.Pool, maxUpload int64) stores {
	return stores{
		medicos:   identity.NewMedicoRepoPG(pool),
		pacientes: identity.NewPacienteRepoPG(pool),
		imagenes:  imagen.NewRepoPG(pool),
		informes:  informe.NewRepoPG(pool),
		blobs:     blobstore.NewPGBlobStore(pool, maxUpload),
		tx:        db.NewTxRunner(pool),
		health:    pool,
	}
}

func newServer(cfg *config.Config, st stores, predictor prediction.Predictor, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	metrics := telemetry.New()

	// Global middleware
	e.Pre(middleware.CleanPath())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Services
	identitySvc := identity.NewService(st.medicos, st.pacientes)
	imagenSvc := imagen.NewService(st.imagenes, st.blobs, identitySvc,
		metrics.InstrumentPredictor(predictor), st.tx, logger)
	informeSvc := informe.NewService(st.informes, imagenSvc, logger)

	api := e.Group("")
	identity.NewHandler(identitySvc).RegisterRoutes(api)
	imagen.NewHandler(imagenSvc, cfg.MaxUploadBytes).RegisterRoutes(api)
	informe.NewHandler(informeSvc).RegisterRoutes(api)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", metrics.Handler())
	e.GET("/openapi.json", apiDocs().Handler())
	if st.health != nil {
		e.GET("/health/db", db.HealthHandler(st.health))
	}

	return e
}
