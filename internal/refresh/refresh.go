package refresh

import (
	"context"
	"time"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const JOB_NAME = "sensor-list-refresh"

// Refresher reloads the sensor list on a fixed interval.
type Refresher struct {
	scheduler quartz.Scheduler
	logger    *zap.Logger
}

// Start schedules fire every interval. The first run happens one interval after
// the call.
func Start(ctx context.Context, interval time.Duration, fire func(), logger *zap.Logger) (*Refresher, error) {
	sched := quartz.NewStdScheduler()
	sched.Start(ctx)

	refreshJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		logger.Debug("refresh: fire")
		fire()
		return true, nil
	})
	detail := quartz.NewJobDetail(refreshJob, quartz.NewJobKey(JOB_NAME))
	if err := sched.ScheduleJob(detail, quartz.NewSimpleTrigger(interval)); err != nil {
		sched.Stop()
		return nil, err
	}
	logger.Info("refresh: scheduled", zap.Duration("interval", interval))

	return &Refresher{
		scheduler: sched,
		logger:    logger,
	}, nil
}

func (r *Refresher) Stop(ctx context.Context) {
	r.scheduler.Stop()
	r.scheduler.Wait(ctx)
	r.logger.Debug("refresh: stopped")
}
