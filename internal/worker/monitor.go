package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Monitor periodically scans for overdue tasks and logs per-department
// counts. It only observes; deadlines never mutate task state, the
// overdue flag is always computed at read time.
type Monitor struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewMonitor(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration) *Monitor {
	return &Monitor{
		pool:     pool,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("Starting overdue monitor", zap.Duration("interval", m.interval))

	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Monitor) Stop() {
	m.logger.Info("Stopping overdue monitor...")
	close(m.stop)
	m.wg.Wait()
	m.logger.Info("Overdue monitor stopped")
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts, err := m.scan(ctx, time.Now())
			if err != nil {
				m.logger.Error("overdue scan failed", zap.Error(err))
				continue
			}
			for _, c := range counts {
				m.logger.Warn("department has overdue tasks",
					zap.String("department_id", c.DepartmentID),
					zap.Int("count", c.Count),
				)
			}
		}
	}
}

type overdueCount struct {
	DepartmentID string
	Count        int
}

func (m *Monitor) scan(ctx context.Context, now time.Time) ([]overdueCount, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT department_id, COUNT(*)
		FROM tasks
		WHERE status IN ('todo', 'in_progress') AND deadline < $1
		GROUP BY department_id
		ORDER BY department_id
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]overdueCount, 0)
	for rows.Next() {
		var c overdueCount
		if err := rows.Scan(&c.DepartmentID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
