package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	mem "pillminder/internal/adapters/storage/memory"
	"pillminder/internal/domain/schedules"
)

type fakeCatalog struct {
	names map[string]string
}

func (c fakeCatalog) NamesByID(ctx context.Context) (map[string]string, error) {
	return c.names, nil
}

func (c fakeCatalog) IDsByName(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(c.names))
	for id, name := range c.names {
		out[name] = id
	}
	return out, nil
}

type fakeNotifier struct {
	sent []Alert
	fail bool
}

func (n *fakeNotifier) Notify(ctx context.Context, a Alert) error {
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, a)
	return nil
}

func seedRecord(t *testing.T, repo schedules.Repository, id, date, hhmm string) {
	t.Helper()

	err := repo.Create(context.Background(), schedules.ScheduleRecord{
		ID:           id,
		UserID:       "elder-1",
		MedicationID: "med-1",
		Container:    1,
		Date:         date,
		Time:         hhmm,
		Status:       schedules.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed record %s: %v", id, err)
	}
}

func TestDispatcher_Scan_NotifiesDueAndMarks(t *testing.T) {
	repo := mem.NewSchedulesRepo()
	notifier := &fakeNotifier{}

	d := NewDispatcher(repo, fakeCatalog{names: map[string]string{"med-1": "Metformin"}},
		notifier, NoopThrottle{}, zap.NewNop(), time.UTC)
	d.now = func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	}

	seedRecord(t, repo, "due-1", "2024-06-10", "08:00")
	seedRecord(t, repo, "future-1", "2024-06-10", "21:00")

	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.sent))
	}
	a := notifier.sent[0]
	if a.RecordID != "due-1" || a.Pill != "Metformin" || a.Container != 1 {
		t.Fatalf("unexpected alert: %+v", a)
	}

	// La dosis vencida quedó marcada; la futura sigue pendiente de alerta
	left, err := repo.ListUnalerted(context.Background())
	if err != nil {
		t.Fatalf("ListUnalerted: %v", err)
	}
	if len(left) != 1 || left[0].ID != "future-1" {
		t.Fatalf("expected only future-1 unalerted, got %+v", left)
	}
}

func TestDispatcher_Scan_UnknownMedicationFallsBackToID(t *testing.T) {
	repo := mem.NewSchedulesRepo()
	notifier := &fakeNotifier{}

	d := NewDispatcher(repo, fakeCatalog{names: map[string]string{}},
		notifier, NoopThrottle{}, zap.NewNop(), time.UTC)
	d.now = func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	}

	seedRecord(t, repo, "due-1", "2024-06-10", "08:00")

	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Pill != "med-1" {
		t.Fatalf("expected pill fallback to medication id, got %+v", notifier.sent)
	}
}

func TestDispatcher_Scan_MalformedRecordSkipped(t *testing.T) {
	repo := mem.NewSchedulesRepo()
	notifier := &fakeNotifier{}

	d := NewDispatcher(repo, fakeCatalog{names: map[string]string{}},
		notifier, NoopThrottle{}, zap.NewNop(), time.UTC)

	seedRecord(t, repo, "bad-1", "10/06/2024", "8am")

	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan must not fail on malformed data: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no alerts, got %d", len(notifier.sent))
	}
}

func TestDispatcher_NotifyFailure_LeavesUnmarked_ThrottleBlocksRetryWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := mem.NewSchedulesRepo()
	notifier := &fakeNotifier{fail: true}

	d := NewDispatcher(repo, fakeCatalog{names: map[string]string{"med-1": "Metformin"}},
		notifier, NewRedisThrottle(client, time.Hour), zap.NewNop(), time.UTC)
	d.now = func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	}

	seedRecord(t, repo, "due-1", "2024-06-10", "08:00")

	// Primer barrido: el notifier falla, el registro queda sin marcar
	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	left, err := repo.ListUnalerted(context.Background())
	if err != nil {
		t.Fatalf("ListUnalerted: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("expected record still unalerted after notify failure, got %+v", left)
	}

	// Segundo barrido dentro de la ventana: el candado redis frena el reintento
	notifier.fail = false
	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected throttle to block retry, got %d alerts", len(notifier.sent))
	}

	// Pasada la ventana, el siguiente barrido reintenta
	mr.FastForward(2 * time.Hour)
	if err := d.Scan(context.Background()); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected retry after TTL, got %d alerts", len(notifier.sent))
	}
}
