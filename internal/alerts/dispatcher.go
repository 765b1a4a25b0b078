package alerts

import (
	"context"
	"time"

	"pillminder/internal/domain/schedules"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Dispatcher barre periódicamente las dosis Pending sin alerta enviada,
// notifica las vencidas y marca alert_sent. Un fallo de notificación deja
// el registro sin marcar para el próximo barrido.
type Dispatcher struct {
	repo     schedules.Repository
	catalog  schedules.Catalog
	notifier Notifier
	throttle Throttle
	log      *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewDispatcher(repo schedules.Repository, catalog schedules.Catalog, notifier Notifier, throttle Throttle, log *zap.Logger, loc *time.Location) *Dispatcher {
	if throttle == nil {
		throttle = NoopThrottle{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Dispatcher{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
		throttle: throttle,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// Start registra el job periódico y arranca el scheduler.
// El caller debe hacer Shutdown() del scheduler devuelto al terminar.
func (d *Dispatcher) Start(interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := d.Scan(context.Background()); err != nil {
				d.log.Error("alert scan failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}

// Scan hace un barrido: carga pendientes sin alerta y notifica las vencidas.
func (d *Dispatcher) Scan(ctx context.Context) error {
	records, err := d.repo.ListUnalerted(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	names, err := d.catalog.NamesByID(ctx)
	if err != nil {
		return err
	}

	now := d.now()

	for _, rec := range records {
		due, err := rec.OccursAt(d.loc)
		if err != nil {
			// Data legada con date/time malformados: no frena el barrido.
			d.log.Warn("unparseable schedule record",
				zap.String("record_id", rec.ID),
				zap.String("date", rec.Date),
				zap.String("time", rec.Time),
			)
			continue
		}
		if due.After(now) {
			continue
		}

		ok, err := d.throttle.Acquire(ctx, rec.ID)
		if err != nil {
			d.log.Error("alert throttle failed", zap.String("record_id", rec.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		pill, found := names[rec.MedicationID]
		if !found {
			pill = rec.MedicationID
		}

		if err := d.notifier.Notify(ctx, Alert{
			RecordID:  rec.ID,
			UserID:    rec.UserID,
			Pill:      pill,
			Container: rec.Container,
			DueAt:     due,
		}); err != nil {
			d.log.Error("alert notify failed", zap.String("record_id", rec.ID), zap.Error(err))
			continue
		}

		if err := d.repo.MarkAlertSent(ctx, rec.ID); err != nil {
			d.log.Error("mark alert sent failed", zap.String("record_id", rec.ID), zap.Error(err))
		}
	}

	return nil
}
