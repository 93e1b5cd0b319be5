package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/usecase/mocks"
)

type stubLister struct {
	due []domain.Cheque
	err error
}

func (s *stubLister) DueToday(ctx context.Context) ([]domain.Cheque, error) {
	return s.due, s.err
}

type stubRecorder struct {
	due  map[domain.Kind]int
	runs []bool
}

func (r *stubRecorder) DueToday(kind domain.Kind, n int) {
	if r.due == nil {
		r.due = map[domain.Kind]int{}
	}
	r.due[kind] = n
}

func (r *stubRecorder) ReminderRun(ok bool) { r.runs = append(r.runs, ok) }

func fixedClock() time.Time {
	return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
}

func TestRunOncePublishesDueEvents(t *testing.T) {
	lister := &stubLister{due: []domain.Cheque{
		{ID: "01HQ3Z8E6Y5V7N2K4M9P0R1S2T", Kind: domain.KindOutgoing, DueDate: "2024-01-10", Status: domain.StatusPending},
		{ID: "01HQ3Z8E6Y5V7N2K4M9P0R1S2V", Kind: domain.KindIncoming, DueDate: "2024-01-10", Status: domain.StatusPending},
		{ID: "01HQ3Z8E6Y5V7N2K4M9P0R1S2W", Kind: domain.KindIncoming, DueDate: "2024-01-10", Status: domain.StatusPending},
	}}
	pub := &mocks.RecordingPublisher{}
	rec := &stubRecorder{}

	w := New(Config{Lister: lister, Publisher: pub, Recorder: rec, Logger: zerolog.Nop(), Clock: fixedClock})

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	events := pub.Events
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, domain.EventTypeChequeDue, ev.Type)
		assert.Equal(t, "2024-01-10", ev.Date)
		assert.True(t, ev.OccurredAt.Equal(fixedClock()))
	}

	assert.Equal(t, 1, rec.due[domain.KindOutgoing])
	assert.Equal(t, 2, rec.due[domain.KindIncoming])
	assert.Equal(t, []bool{true}, rec.runs)
}

func TestRunOnceNothingDue(t *testing.T) {
	pub := &mocks.RecordingPublisher{}
	rec := &stubRecorder{}
	w := New(Config{Lister: &stubLister{}, Publisher: pub, Recorder: rec, Logger: zerolog.Nop()})

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.Events)
	assert.Equal(t, 0, rec.due[domain.KindOutgoing])
}

func TestRunOnceListError(t *testing.T) {
	rec := &stubRecorder{}
	w := New(Config{Lister: &stubLister{err: domain.ErrCollaboratorUnavailable}, Recorder: rec, Logger: zerolog.Nop()})

	_, err := w.RunOnce(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCollaboratorUnavailable))
	assert.Equal(t, []bool{false}, rec.runs)
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	w := New(Config{Lister: &stubLister{}, Logger: zerolog.Nop(), Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reminder did not stop after cancel")
	}
}
