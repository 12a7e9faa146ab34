package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueLowStock = "jobs:lowstock"

	// AlertsKey holds the most recent low stock alerts, newest first.
	AlertsKey    = "alerts:lowstock"
	alertsMaxLen = 100

	maxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

type LowStockScanPayload struct {
	ProductIDs []string `json:"product_ids"`
}

// LowStockAlert is the entry pushed onto AlertsKey when a product is found
// under its minimum.
type LowStockAlert struct {
	ProductID   string `json:"product_id"`
	ProductCode string `json:"product_code"`
	Description string `json:"description"`
	Stock       string `json:"stock"`
	MinStock    string `json:"min_stock"`
	DetectedAt  string `json:"detected_at"` // ISO 8601
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueLowStockScan pushes a scan job covering the products a sale touched.
func (d *Dispatcher) EnqueueLowStockScan(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	return d.enqueue(ctx, QueueLowStock, "lowstock_scan", LowStockScanPayload{ProductIDs: productIDs}, 0)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}, attempts int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data, Attempts: attempts}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues against the root repository bundle.
type Pool struct {
	rdb   *redis.Client
	repos repository.Repos
}

func NewPool(rdb *redis.Client, repos repository.Repos) *Pool {
	return &Pool{rdb: rdb, repos: repos}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP — zero CPU when
// idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx.
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueLowStock).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch job.Type {
	case "lowstock_scan":
		err = p.scanLowStock(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type, dropping")
		return
	}
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to re-marshal job for retry")
		return
	}
	if pushErr := p.rdb.LPush(ctx, queue, encoded).Err(); pushErr != nil {
		log.Error().Err(pushErr).Str("queue", queue).Msg("failed to requeue job")
	}
}

// scanLowStock re-reads each touched product and publishes an alert when its
// stock sits below the minimum. Missing products are skipped, not retried.
func (p *Pool) scanLowStock(ctx context.Context, payload json.RawMessage) error {
	var scan LowStockScanPayload
	if err := json.Unmarshal(payload, &scan); err != nil {
		return err
	}

	for _, raw := range scan.ProductIDs {
		pid, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		prod, err := p.repos.Products.GetByID(ctx, pid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		if !prod.Active || !prod.TracksInventory {
			continue
		}
		if prod.QuantityInStock.GreaterThanOrEqual(prod.MinStock) {
			continue
		}
		p.publishAlert(ctx, prod)
	}
	return nil
}

func (p *Pool) publishAlert(ctx context.Context, prod *model.Product) {
	alert := LowStockAlert{
		ProductID:   prod.ID.String(),
		ProductCode: prod.Code,
		Description: prod.Description,
		Stock:       prod.QuantityInStock.String(),
		MinStock:    prod.MinStock.String(),
		DetectedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(alert)
	if err != nil {
		return
	}

	pipe := p.rdb.TxPipeline()
	pipe.LPush(ctx, AlertsKey, data)
	pipe.LTrim(ctx, AlertsKey, 0, alertsMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Msg("lowstock: failed to publish alert")
		return
	}

	log.Warn().
		Str("code", prod.Code).
		Str("stock", prod.QuantityInStock.String()).
		Str("min_stock", prod.MinStock.String()).
		Msg("lowstock: product under minimum")
}
