package router

import (
	"net/http"

	mem "xiuh/internal/adapters/storage/memory"
	"xiuh/internal/domain/catalog"
	"xiuh/internal/domain/daily"
	"xiuh/internal/domain/inventory"
	"xiuh/internal/domain/pets"
	"xiuh/internal/domain/timezones"
	"xiuh/internal/middleware"
	"xiuh/internal/platform/cache"
	"xiuh/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Repos agrupa los repos de un backend. Todos deben venir del mismo store.
type Repos struct {
	Pets      pets.Repository
	Inventory inventory.Repository
	Daily     daily.Repository
	Timezones timezones.Repository
}

type Options struct {
	Logger logger.Logger // puede ser nil

	// Secreto compartido con el gateway. Vacío = modo dev (se confía en X-User-ID).
	GatewayToken string

	// Opcional: si Repos.Pets es nil, todo va a un store in-memory.
	Repos Repos

	PetCache      cache.Cache[pets.Pet]
	TimezoneCache cache.Cache[timezones.UserTimezone]
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.GatewayToken))
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	repos := opts.Repos
	if repos.Pets == nil {
		repos = MemoryRepos(mem.NewStore())
	}

	// Services por módulo
	invSvc := inventory.NewService(repos.Inventory, log)
	petsSvc := pets.NewService(repos.Pets, opts.PetCache, log)
	dailySvc := daily.NewService(repos.Daily, invSvc, log)
	tzSvc := timezones.NewService(repos.Timezones, opts.TimezoneCache, log)

	// Rutas por módulo
	catalog.RegisterRoutes(r)
	pets.RegisterRoutes(r, petsSvc, invSvc)
	inventory.RegisterRoutes(r, invSvc)
	daily.RegisterRoutes(r, dailySvc, petsSvc)
	timezones.RegisterRoutes(r, tzSvc)

	return r
}

func MemoryRepos(s *mem.Store) Repos {
	return Repos{
		Pets:      mem.NewPetRepo(s),
		Inventory: mem.NewInventoryRepo(s),
		Daily:     mem.NewDailyRepo(s),
		Timezones: mem.NewTimezoneRepo(s),
	}
}
