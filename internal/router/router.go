package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	mem "pillminder/internal/adapters/storage/memory"
	pg "pillminder/internal/adapters/storage/postgres"
	"pillminder/internal/domain/connections"
	"pillminder/internal/domain/medications"
	"pillminder/internal/domain/schedules"
	"pillminder/internal/middleware"
	"pillminder/internal/ports/auth"

	_ "pillminder/docs" // registro swagger

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: logger para el request log. Nil => sin request log.
	Logger *zap.Logger

	// Zona horaria para interpretar date/time de los schedules.
	Location *time.Location
}

// Services expone los services armados por NewRouter, para que main
// pueda colgarles colaboradores (p.ej. el dispatcher de alertas).
type Services struct {
	Medications *medications.Service
	Schedules   *schedules.Service
	Connections *connections.Service

	SchedulesRepo schedules.Repository
}

func NewRouter(opts Options) (http.Handler, Services) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if opts.Logger != nil {
		r.Use(middleware.RequestLog(opts.Logger))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		medsRepo  medications.Repository
		schedRepo schedules.Repository
		connsRepo connections.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		medsRepo = pg.NewMedicationsRepo(db)
		schedRepo = pg.NewSchedulesRepo(db)
		connsRepo = pg.NewConnectionsRepo(db)
	} else {
		medsRepo = mem.NewMedicationsRepo()
		schedRepo = mem.NewSchedulesRepo()
		connsRepo = mem.NewConnectionsRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medsRepo)
	schedSvc := schedules.NewService(schedRepo, medsSvc, opts.Location)
	connsSvc := connections.NewService(connsRepo)

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	schedules.RegisterRoutes(r, schedSvc, connsSvc)
	connections.RegisterRoutes(r, connsSvc)

	return r, Services{
		Medications:   medsSvc,
		Schedules:     schedSvc,
		Connections:   connsSvc,
		SchedulesRepo: schedRepo,
	}
}
