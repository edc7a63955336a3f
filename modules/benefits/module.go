package benefits

import (
	"embed"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vantagehr/benefits/modules/benefits/infrastructure/persistence"
	"github.com/vantagehr/benefits/modules/benefits/ingest"
	"github.com/vantagehr/benefits/modules/benefits/presentation/controllers"
	"github.com/vantagehr/benefits/modules/benefits/services"
	"github.com/vantagehr/benefits/pkg/configuration"
	"github.com/vantagehr/benefits/pkg/eventbus"
	"github.com/vantagehr/benefits/pkg/queue"
)

//go:embed infrastructure/persistence/schema/benefits-schema.sql
var MigrationFiles embed.FS

type Module struct {
	BatchService *services.BatchService
	Orchestrator *ingest.Orchestrator
}

type Options struct {
	Bus      eventbus.EventBus
	Producer *queue.Producer
	Conf     *configuration.Configuration
	Log      *logrus.Logger
}

// New wires the module's repositories, services and batch pipeline.
// HTTP routes are attached separately so the worker binary can load the
// module without a router.
func New(opts Options) *Module {
	batches := persistence.NewBatchRepository()
	employees := persistence.NewEmployeeRepository()
	locations := persistence.NewLocationRepository()
	mappings := persistence.NewMappingRepository()
	policies := persistence.NewPolicyRepository()
	insurers := persistence.NewInsurerRepository()
	rows := persistence.NewEnrollmentRepository()

	resolver := ingest.NewResolver(employees, mappings, policies, insurers)
	orchestrator := ingest.NewOrchestrator(ingest.OrchestratorDeps{
		Batches:          batches,
		EmployeeRules:    ingest.NewEmployeeRules(employees, locations),
		EndorsementRules: ingest.NewEndorsementRules(),
		Resolver:         resolver,
		Detector:         ingest.NewDetector(rows),
		Executor:         ingest.NewExecutor(rows, employees),
		Reports:          ingest.NewReportWriter(opts.Conf.UploadsPath),
		Bus:              opts.Bus,
		Log:              opts.Log,
	})

	services.RegisterNotifications(opts.Bus, opts.Log)

	return &Module{
		BatchService: services.NewBatchService(batches, opts.Producer),
		Orchestrator: orchestrator,
	}
}

func (m *Module) RegisterRoutes(r *mux.Router, conf *configuration.Configuration, log *logrus.Logger) {
	controllers.NewBatchController(m.BatchService, conf, log).Register(r)
}
