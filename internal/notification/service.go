// Package notification projects config store changes into the search index
// that raw query searches run against.
package notification

import (
	"context"
	"net/http"
	"sync"
	"time"

	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/utils"
)

// ConfigReader loads a config from the authoritative store.
type ConfigReader interface {
	GetConfig(ctx context.Context, id string) (models.NotificationConfigInfo, error)
}

// ConfigIndexer writes configs to the search index.
type ConfigIndexer interface {
	IndexConfig(ctx context.Context, index string, info models.NotificationConfigInfo) error
	DeleteConfig(ctx context.Context, index, id string) error
}

type Config struct {
	Index        string
	QueueSize    int
	MaxWorkers   int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Service runs projection Tasks on a pool of workers.
type Service struct {
	reader  ConfigReader
	indexer ConfigIndexer
	logger  *logging.Logger
	config  Config
	tasks   chan models.Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
}

func New(reader ConfigReader, indexer ConfigIndexer, logger *logging.Logger, cfg Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		reader:  reader,
		indexer: indexer,
		logger:  logger,
		config:  cfg,
		tasks:   make(chan models.Task, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker pool.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop cancels the workers. Tasks still queued are dropped.
func (s *Service) Stop() {
	s.cancel()
}

// QueueTask enqueues a Task for processing.
func (s *Service) QueueTask(task models.Task) {
	select {
	case s.tasks <- task:
		s.logger.Debugf("Queued task: request_id=%s config_id=%s", task.RequestID, task.ConfigID)
	default:
		s.logger.Errorf("Queue full, dropping task: request_id=%s config_id=%s", task.RequestID, task.ConfigID)
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case task := <-s.tasks:
			s.handleTask(task)
		}
	}
}

// handleTask copies the current store state of the config into the index. A
// config that is gone from the store is removed from the index, whatever the
// task action says, so out of order events settle on the right state.
func (s *Service) handleTask(task models.Task) {
	log := s.logger.WithField("request_id", task.RequestID).WithField("config_id", task.ConfigID)

	err := utils.Retry(s.ctx, log, s.config.MaxAttempts, s.config.RetryBackoff, func(ctx context.Context) error {
		if task.Action == models.ActionDeleted {
			return s.indexer.DeleteConfig(ctx, s.config.Index, task.ConfigID)
		}
		info, err := s.reader.GetConfig(ctx, task.ConfigID)
		if models.StatusOf(err) == http.StatusNotFound {
			return s.indexer.DeleteConfig(ctx, s.config.Index, task.ConfigID)
		}
		if err != nil {
			return err
		}
		return s.indexer.IndexConfig(ctx, s.config.Index, info)
	})
	if err != nil {
		log.Errorf("Projection of %s failed: %v", task.Action, err)
		return
	}
	log.Infof("Projected %s %s", task.ConfigType, task.Action)
}
