package api

import (
	"compress/flate"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	api_middleware "github.com/openml/openml-go/api/middleware"
	"github.com/openml/openml-go/api/pipeline"
	"github.com/openml/openml-go/api/routes"
	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/config"
)

// NewRouter returns a chi router with the OpenML endpoints registered.
func NewRouter(cfg config.Config, st *store.Store, runner *pipeline.EvaluationRunner) (chi.Router, error) {

	// Setup the router and configure baseline middleware
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(api_middleware.Authenticate(st))
	r.Use(api_middleware.Logger(cfg.Log()))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(flate.DefaultCompression))

	// Configure CORS handling
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeXML))

		r.Get("/xsd/{name}", routes.Schema(&cfg))

		r.Route("/data", func(r chi.Router) {
			r.Post("/", routes.DataUpload(&cfg, st))
			r.Get("/list", routes.DataList(&cfg, st))
			r.Get("/qualities/list", routes.DataQualitiesList(&cfg, st))
			r.Get("/features/{id}", routes.DataFeatures(&cfg, st))
			r.Get("/qualities/{id}", routes.DataQualities(&cfg, st))
			r.Get("/unprocessed/{engine}/{mode}", routes.DataUnprocessed(&cfg, st))
			r.Post("/tag", routes.DataTag(&cfg, st))
			r.Post("/untag", routes.DataUntag(&cfg, st))
			r.Post("/reset/{id}", routes.DataReset(&cfg, st))
			r.Post("/status/update", routes.DataStatusUpdate(&cfg, st))
			r.Get("/{id}", routes.DataGet(&cfg, st))
			r.Delete("/{id}", routes.DataDelete(&cfg, st))
		})

		r.Route("/task", func(r chi.Router) {
			r.Post("/", routes.TaskUpload(&cfg, st))
			r.Post("/tag", routes.TaskTag(&cfg, st))
			r.Post("/untag", routes.TaskUntag(&cfg, st))
			r.Get("/{id}", routes.TaskGet(&cfg, st))
			r.Delete("/{id}", routes.TaskDelete(&cfg, st))
		})

		r.Route("/run", func(r chi.Router) {
			r.Post("/", routes.RunUpload(&cfg, st))
			r.Get("/list", routes.RunList(&cfg, st))
			r.Post("/attach", routes.RunAttach(&cfg, st))
			r.Post("/tag", routes.RunTag(&cfg, st))
			r.Post("/untag", routes.RunUntag(&cfg, st))
			r.Get("/{id}", routes.RunGet(&cfg, st))
			r.Delete("/{id}", routes.RunDelete(&cfg, st))
		})

		r.Get("/evaluation/request/{engine}/{mode}/{num}", routes.EvaluationRequest(&cfg, st))
	})

	r.Get("/data/v1/download/{file}/{name}", routes.Download(&cfg, st))
	r.Get("/data/get_csv/{file}/{name}", routes.DownloadCSV(&cfg, st))

	r.Route("/admin", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(routes.RequireAdmin)
		r.Get("/status", routes.StatusRequest(&cfg, st))
		r.Get("/queue", routes.Waiting(&cfg, st))
		r.Get("/queue/runs", routes.JobsRequest(&cfg, st))
		r.Delete("/queue", routes.ClearRequest(&cfg, st))
		r.Get("/evaluator", routes.EvaluatorStatusRequest(&cfg, st, runner))
		r.Post("/evaluator/start", routes.StartRequest(&cfg, runner))
		r.Post("/evaluator/stop", routes.StopRequest(&cfg, runner))
		r.Post("/evaluator/dispatch", routes.ForceDispatchRequest(&cfg, runner))
	})

	return r, nil
}
