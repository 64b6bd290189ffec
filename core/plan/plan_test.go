package plan

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/core/model"
)

var night0 = time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)

func obs(id string) model.Observation {
	return model.Observation{ID: id, Site: model.GeminiSouth, Instrument: model.GMOSSouth}
}

func TestTimeToSlots(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{time.Second, 1},
		{time.Minute, 1},
		{61 * time.Second, 2},
		{10 * time.Minute, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeToSlots(time.Minute, tt.d), tt.d.String())
	}
	assert.Equal(t, 0, TimeToSlots(0, time.Hour))
}

func TestAddConsumesCapacity(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0.Add(10*time.Hour), time.Minute, 600)
	require.NoError(t, p.Add(obs("a"), night0, 0, 100, 1.5, 0, 2))

	assert.Equal(t, 500, p.TimeLeft())
	assert.True(t, p.Contains("a"))
	assert.False(t, p.Contains("b"))

	v := p.Visits()
	require.Len(t, v, 1)
	assert.Equal(t, Visit{
		Start: night0, ObservationID: "a", AtomStart: 0, AtomEnd: 2,
		StartSlot: 0, Slots: 100, Score: 1.5, Instrument: model.GMOSSouth,
	}, v[0])
	assert.NoError(t, p.Validate())
}

func TestAddRejectsOverCapacity(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0, time.Minute, 10)
	require.NoError(t, p.Add(obs("a"), night0, 0, 8, 1, 0, 0))

	err := p.Add(obs("b"), night0, 8, 3, 1, 0, 0)
	var ce *model.CapacityExceededError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Requested)
	assert.Equal(t, 2, ce.Left)

	assert.Equal(t, 2, p.TimeLeft())
	assert.Len(t, p.Visits(), 1)
	assert.False(t, p.Contains("b"))
}

func TestAddRejectsOutsideNight(t *testing.T) {
	p := New(model.GeminiNorth, night0, night0, time.Minute, 10)
	var ce *model.CapacityExceededError
	require.True(t, errors.As(p.Add(obs("a"), night0, 8, 3, 1, 0, 0), &ce))
	require.True(t, errors.As(p.Add(obs("a"), night0, -1, 3, 1, 0, 0), &ce))
	require.Error(t, p.Add(obs("a"), night0, 0, 0, 1, 0, 0))
	assert.Equal(t, 10, p.TimeLeft())
}

func TestPermissiveCapacity(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0, time.Minute, 5, PermissiveCapacity())
	require.NoError(t, p.Add(obs("a"), night0, 0, 4, 1, 0, 0))
	require.NoError(t, p.Add(obs("b"), night0, 4, 4, 1, 0, 0))

	assert.Equal(t, -3, p.TimeLeft())
	assert.Error(t, p.Validate())
}

func TestValidateOverlap(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0, time.Minute, 20)
	require.NoError(t, p.Add(obs("a"), night0, 0, 5, 1, 0, 0))
	require.NoError(t, p.Add(obs("b"), night0, 5, 5, 1, 0, 0))
	require.NoError(t, p.Validate())

	require.NoError(t, p.Add(obs("c"), night0, 9, 2, 1, 0, 0))
	assert.Error(t, p.Validate())
}

func TestCapacityProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		total := 1 + r.Intn(200)
		p := New(model.GeminiSouth, night0, night0, time.Minute, total)
		next := 0
		for k := 0; k < 30; k++ {
			slots := 1 + r.Intn(40)
			before := p.TimeLeft()
			n := len(p.Visits())
			err := p.Add(obs("o"), night0, next, slots, r.Float64(), 0, 0)
			if slots > before {
				require.Error(t, err)
			}
			if err != nil {
				assert.Equal(t, before, p.TimeLeft())
				assert.Len(t, p.Visits(), n)
			} else {
				next += slots
			}
			assert.GreaterOrEqual(t, p.TimeLeft(), 0)
		}
		assert.NoError(t, p.Validate())
	}
}

func TestConcurrentAdd(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0, time.Minute, 100)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = p.Add(obs("o"), night0, (i%20)*5, 5, 1, 0, 0)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, p.TimeLeft())
	assert.Len(t, p.Visits(), 20)
}

func TestNightStats(t *testing.T) {
	p := New(model.GeminiSouth, night0, night0, time.Minute, 10)
	_, ok := p.NightStats()
	assert.False(t, ok)

	p.SetNightStats(NightStats{PlanScore: 3, ToOs: 1})
	s, ok := p.NightStats()
	require.True(t, ok)
	assert.Equal(t, 3.0, s.PlanScore)
	assert.Equal(t, 3.0, p.Snapshot().NightStats.PlanScore)
}

func events() []NightEvents {
	return []NightEvents{
		{Site: model.GeminiSouth, SlotMinutes: 1, Nights: []Night{{Start: night0, End: night0.Add(9 * time.Hour), Slots: 540}}},
		{Site: model.GeminiNorth, SlotMinutes: 1, Nights: []Night{{Start: night0, End: night0.Add(10 * time.Hour), Slots: 600}}},
	}
}

func TestPlans(t *testing.T) {
	ps, err := NewPlans(events(), 0)
	require.NoError(t, err)

	all := ps.All()
	require.Len(t, all, 2)
	assert.Equal(t, model.GeminiNorth, all[0].Site)
	assert.Equal(t, 600, all[0].TimeLeft())

	gs, ok := ps.For(model.GeminiSouth)
	require.True(t, ok)
	assert.Equal(t, time.Minute, gs.SlotLength)

	assert.False(t, ps.AllDone())
	gs.SetFull(true)
	assert.False(t, ps.AllDone())
	all[0].SetFull(true)
	assert.True(t, ps.AllDone())
}

func TestNewPlansErrors(t *testing.T) {
	_, err := NewPlans(events(), 1)
	assert.Error(t, err)

	ev := events()
	ev[0].SlotMinutes = 0
	_, err = NewPlans(ev, 0)
	assert.Error(t, err)

	ev = events()
	ev[1].Site = model.GeminiSouth
	_, err = NewPlans(ev, 0)
	assert.Error(t, err)
}
