package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rakeshashastri/gameclock/internal/models"
	"github.com/rakeshashastri/gameclock/internal/storage/memory"
)

func control(id, name string, seconds int64) models.TimeControl {
	return models.TimeControl{ID: id, Name: name, StartingTimeSeconds: seconds}
}

func TestSaveCustomLimit(t *testing.T) {
	app := NewApp(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < models.MaxCustomTimeControls; i++ {
		tc := control(fmt.Sprintf("custom-%d", i), fmt.Sprintf("Custom %d", i), 60)
		if err := app.SaveCustom(ctx, tc); err != nil {
			t.Fatalf("custom %d: %v", i+1, err)
		}
	}

	err := app.SaveCustom(ctx, control("custom-5", "One Too Many", 60))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("got %v, want ErrLimitExceeded", err)
	}

	customs := app.CustomTimeControls()
	if len(customs) != models.MaxCustomTimeControls {
		t.Fatalf("got %d customs, want %d", len(customs), models.MaxCustomTimeControls)
	}
	for i, tc := range customs {
		if want := fmt.Sprintf("custom-%d", i); tc.ID != want {
			t.Errorf("existing custom %d changed: got id %q, want %q", i, tc.ID, want)
		}
	}
}

func TestSaveCustomUpdatesInPlace(t *testing.T) {
	app := NewApp(memory.NewStore())
	ctx := context.Background()

	if err := app.SaveCustom(ctx, control("mine", "First Name", 60)); err != nil {
		t.Fatal(err)
	}
	if err := app.SaveCustom(ctx, control("mine", "Second Name", 90)); err != nil {
		t.Fatal(err)
	}

	customs := app.CustomTimeControls()
	if len(customs) != 1 {
		t.Fatalf("got %d customs, want 1", len(customs))
	}
	if customs[0].Name != "Second Name" || customs[0].StartingTimeSeconds != 90 {
		t.Errorf("got %+v, want the updated values", customs[0])
	}
}

func TestSaveCustomUpdateAllowedAtLimit(t *testing.T) {
	app := NewApp(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < models.MaxCustomTimeControls; i++ {
		if err := app.SaveCustom(ctx, control(fmt.Sprintf("custom-%d", i), "c", 60)); err != nil {
			t.Fatal(err)
		}
	}
	if err := app.SaveCustom(ctx, control("custom-0", "renamed", 120)); err != nil {
		t.Fatalf("updating an existing id at the limit must succeed, got %v", err)
	}
}

func TestSaveRecentDedupesAndTruncates(t *testing.T) {
	app := NewApp(memory.NewStore())
	ctx := context.Background()

	app.SaveRecent(ctx, control("a", "A", 60))
	app.SaveRecent(ctx, control("b", "B", 120))
	app.SaveRecent(ctx, control("c", "C", 180))
	app.SaveRecent(ctx, control("a", "A", 60))

	recent := app.RecentTimeControls()
	if len(recent) != 3 {
		t.Fatalf("got %d recents, want 3", len(recent))
	}
	for i, want := range []string{"a", "c", "b"} {
		if recent[i].ID != want {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].ID, want)
		}
	}

	app.SaveRecent(ctx, control("d", "D", 240))
	recent = app.RecentTimeControls()
	if len(recent) != 3 || recent[0].ID != "d" {
		t.Errorf("fourth distinct pick must evict the oldest, got %+v", recent)
	}
	for _, tc := range recent {
		if tc.ID == "b" {
			t.Error("oldest entry should have been evicted")
		}
	}
}

func TestDeleteCustomUnknownIDIsNoOp(t *testing.T) {
	app := NewApp(memory.NewStore())
	ctx := context.Background()

	if err := app.SaveCustom(ctx, control("keep", "Keep", 60)); err != nil {
		t.Fatal(err)
	}
	app.DeleteCustom(ctx, "missing")

	if customs := app.CustomTimeControls(); len(customs) != 1 || customs[0].ID != "keep" {
		t.Errorf("got %+v, want the single saved custom", customs)
	}
}

func TestLoadFallsBackToEmptyOnError(t *testing.T) {
	app := NewApp(failingRepo{})
	app.Load(context.Background())

	if got := app.RecentTimeControls(); len(got) != 0 {
		t.Errorf("got %d recents, want 0", len(got))
	}
	if got := app.CustomTimeControls(); len(got) != 0 {
		t.Errorf("got %d customs, want 0", len(got))
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	app := NewApp(failingRepo{})
	ctx := context.Background()

	if err := app.SaveCustom(ctx, control("mine", "Mine", 60)); err != nil {
		t.Fatalf("a write failure is swallowed, got %v", err)
	}
	app.SaveRecent(ctx, control("mine", "Mine", 60))

	if got := app.CustomTimeControls(); len(got) != 1 {
		t.Errorf("got %d customs, want 1", len(got))
	}
	if got := app.RecentTimeControls(); len(got) != 1 {
		t.Errorf("got %d recents, want 1", len(got))
	}
}

func TestLoadClampsOversizedLists(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var recent, custom []models.TimeControl
	for i := 0; i < 8; i++ {
		recent = append(recent, control(fmt.Sprintf("r-%d", i), "r", 60))
		custom = append(custom, control(fmt.Sprintf("c-%d", i), "c", 60))
	}
	if err := store.SaveRecentTimeControls(ctx, recent); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveCustomTimeControls(ctx, custom); err != nil {
		t.Fatal(err)
	}

	app := NewApp(store)
	app.Load(ctx)

	if got := len(app.RecentTimeControls()); got != models.MaxRecentTimeControls {
		t.Errorf("got %d recents, want %d", got, models.MaxRecentTimeControls)
	}
	if got := len(app.CustomTimeControls()); got != models.MaxCustomTimeControls {
		t.Errorf("got %d customs, want %d", got, models.MaxCustomTimeControls)
	}
}

type failingRepo struct{}

func (failingRepo) GetRecentTimeControls(context.Context) ([]models.TimeControl, error) {
	return nil, errors.New("read failed")
}

func (failingRepo) SaveRecentTimeControls(context.Context, []models.TimeControl) error {
	return errors.New("write failed")
}

func (failingRepo) GetCustomTimeControls(context.Context) ([]models.TimeControl, error) {
	return nil, errors.New("read failed")
}

func (failingRepo) SaveCustomTimeControls(context.Context, []models.TimeControl) error {
	return errors.New("write failed")
}
