package module

import (
	"fmt"
	"sort"
	"sync"

	"realtor/core/config"
	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/scheduler"
	"realtor/core/storage"

	"gorm.io/gorm"
)

// Module is a self-contained feature: models, migrations and routes
type Module interface {
	Init() error
	Migrate() error
	GetModels() []any
	Routes(router *router.RouterGroup)
}

// DefaultModule provides no-op implementations to embed
type DefaultModule struct{}

func (DefaultModule) Init() error { return nil }
func (DefaultModule) Migrate() error { return nil }
func (DefaultModule) GetModels() []any { return nil }
func (DefaultModule) Routes(_ *router.RouterGroup) {}

// Dependencies are handed to every module constructor.
// Router requires an admin session, PublicRouter does not.
type Dependencies struct {
	DB           *gorm.DB
	Router       *router.RouterGroup
	PublicRouter *router.RouterGroup
	Logger       logger.Logger
	Emitter      *emitter.Emitter
	Storage      *storage.ActiveStorage
	EmailSender  email.Sender
	Scheduler    *scheduler.CronScheduler
	Config       *config.Config
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Module{}
)

// RegisterModule records a module under a unique name
func RegisterModule(name string, m Module) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}
	registry[name] = m
	return nil
}

// GetModule looks up a registered module
func GetModule(name string) (Module, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// Initializer runs the Init, Migrate, Routes lifecycle
type Initializer struct {
	logger logger.Logger
}

func NewInitializer(log logger.Logger) *Initializer {
	return &Initializer{logger: log}
}

// Initialize registers, initialises, migrates and routes each module in name
// order. A failing module is logged and skipped.
func (i *Initializer) Initialize(modules map[string]Module, deps Dependencies) []Module {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	var initialized []Module
	for _, name := range names {
		mod := modules[name]
		if mod == nil {
			continue
		}

		if err := RegisterModule(name, mod); err != nil {
			i.logger.Error("Failed to register module", logger.String("module", name), logger.String("error", err.Error()))
			continue
		}
		if err := mod.Migrate(); err != nil {
			i.logger.Error("Failed to migrate module", logger.String("module", name), logger.String("error", err.Error()))
			continue
		}
		if err := mod.Init(); err != nil {
			i.logger.Error("Failed to initialize module", logger.String("module", name), logger.String("error", err.Error()))
			continue
		}
		if deps.Router != nil {
			mod.Routes(deps.Router)
		}

		initialized = append(initialized, mod)
	}
	return initialized
}
