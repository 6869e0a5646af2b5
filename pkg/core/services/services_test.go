package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/core/calendar"
	"github.com/sosbx/garde-planner/pkg/core/model"
	"github.com/sosbx/garde-planner/pkg/core/optimizer"
)

// fakeStore implements the store interfaces over in-memory fixtures and
// records what was persisted
type fakeStore struct {
	planning  *model.Planning
	doctors   []*model.Person
	cats      []*model.Person
	intervals map[string]optimizer.IntervalSet

	savedRunID    string
	savedByDate   map[string]map[string]string
	saveCalls     int
	inserted      *model.Planning
	insertedCalls int
}

func (s *fakeStore) GetLatestPlanning(ctx context.Context) (*model.Planning, error) {
	return s.planning, nil
}

func (s *fakeStore) GetRoster(ctx context.Context) ([]*model.Person, []*model.Person, error) {
	return s.doctors, s.cats, nil
}

func (s *fakeStore) GetIntervals(ctx context.Context) (map[string]optimizer.IntervalSet, error) {
	return s.intervals, nil
}

func (s *fakeStore) SaveAssignments(ctx context.Context, planning *model.Planning, runID string, byDate map[string]map[string]string) error {
	s.saveCalls++
	s.savedRunID = runID
	s.savedByDate = byDate
	return nil
}

func (s *fakeStore) InsertPlanning(ctx context.Context, planning *model.Planning) error {
	s.insertedCalls++
	s.inserted = planning
	return nil
}

// capturingSheets records publish traffic instead of talking to Google
type capturingSheets struct {
	cleared    []string
	updatedTo  string
	updateRows [][]interface{}
}

func (c *capturingSheets) ClearValues(spreadsheetID, sheetRange string) error {
	c.cleared = append(c.cleared, sheetRange)
	return nil
}

func (c *capturingSheets) UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error {
	c.updatedTo = sheetRange
	c.updateRows = values
	return nil
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekendPlanning() *model.Planning {
	sat := testDate(2026, time.January, 3)
	mkSlot := func(day time.Time, hour int, abbrev string) *model.Slot {
		return &model.Slot{
			StartTime:    day.Add(time.Duration(hour) * time.Hour),
			EndTime:      day.Add(time.Duration(hour+5) * time.Hour),
			Site:         "Bordeaux",
			Abbreviation: abbrev,
		}
	}
	return &model.Planning{
		ID:        "planning-1",
		StartDate: sat,
		EndDate:   sat,
		Days: []*model.Day{
			{
				Date:      sat,
				IsWeekend: true,
				Slots:     []*model.Slot{mkSlot(sat, 8, "ML"), mkSlot(sat, 14, "AC")},
			},
		},
	}
}

func weekendStore() *fakeStore {
	return &fakeStore{
		planning: weekendPlanning(),
		doctors:  []*model.Person{{Name: "martin", Kind: model.KindDoctor, HalfParts: 2}},
		intervals: map[string]optimizer.IntervalSet{
			"martin": {WeekendGroups: map[string]optimizer.MinMax{"VmS": {Min: 1}}},
		},
	}
}

func TestOptimizeWeekends_PersistsAssignments(t *testing.T) {
	store := weekendStore()

	result, err := OptimizeWeekends(context.Background(), store, &config.Config{}, zap.NewNop(), OptimizeWeekendsOptions{Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, "planning-1", result.PlanningID)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, result.RunID, store.savedRunID)

	key := testDate(2026, time.January, 3).Format(model.DateFormat)
	assert.Equal(t, "martin", store.savedByDate[key]["MLAC"])
}

func TestOptimizeWeekends_DryRunSkipsPersistence(t *testing.T) {
	store := weekendStore()

	result, err := OptimizeWeekends(context.Background(), store, &config.Config{}, zap.NewNop(), OptimizeWeekendsOptions{DryRun: true, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Assigned)
	assert.Zero(t, store.saveCalls, "dry run must not write")
	assert.Equal(t, "martin", store.planning.Days[0].Slots[0].Assignee,
		"the in-memory planning is still optimized")
}

func TestOptimizeWeekends_EmptyRosterFails(t *testing.T) {
	store := &fakeStore{planning: weekendPlanning()}

	_, err := OptimizeWeekends(context.Background(), store, &config.Config{}, zap.NewNop(), OptimizeWeekendsOptions{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "roster is empty")
}

func TestOptimizeWeekends_ReportsShortfalls(t *testing.T) {
	store := weekendStore()
	store.intervals["martin"] = optimizer.IntervalSet{
		WeekendGroups: map[string]optimizer.MinMax{"VmS": {Min: 5}},
	}

	result, err := OptimizeWeekends(context.Background(), store, &config.Config{}, zap.NewNop(), OptimizeWeekendsOptions{DryRun: true, Seed: 7})
	require.NoError(t, err, "shortfalls are diagnostics, not failures")
	assert.Equal(t, 4, result.Stats.UnmetMinimums["martin"]["VmS"])
}

func TestImportPlanning(t *testing.T) {
	cal, err := calendar.New(nil)
	require.NoError(t, err)

	planning := weekendPlanning()
	// stale flag: the calendar pass must re-derive it
	planning.Days[0].IsWeekend = false

	path := filepath.Join(t.TempDir(), "planning.json")
	data, err := json.Marshal(planning)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	store := &fakeStore{}
	imported, err := ImportPlanning(context.Background(), store, cal, path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, store.insertedCalls)
	assert.True(t, imported.Days[0].IsWeekend, "day flags are re-derived from the calendar")
}

func TestImportPlanning_RejectsInvalidFiles(t *testing.T) {
	cal, err := calendar.New(nil)
	require.NoError(t, err)
	store := &fakeStore{}

	cases := map[string]func(p *model.Planning){
		"no days":          func(p *model.Planning) { p.Days = nil },
		"inverted range":   func(p *model.Planning) { p.EndDate = p.StartDate.AddDate(0, 0, -1) },
		"bad abbreviation": func(p *model.Planning) { p.Days[0].Slots[0].Abbreviation = "MLX" },
		"bad time range":   func(p *model.Planning) { p.Days[0].Slots[0].EndTime = p.Days[0].Slots[0].StartTime },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			planning := weekendPlanning()
			mutate(planning)

			path := filepath.Join(t.TempDir(), "planning.json")
			data, err := json.Marshal(planning)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0644))

			_, err = ImportPlanning(context.Background(), store, cal, path, zap.NewNop())
			assert.Error(t, err)
		})
	}

	assert.Zero(t, store.insertedCalls)
}

func TestPublishPlanning(t *testing.T) {
	planning := weekendPlanning()
	planning.Days[0].Slots[0].Assignee = "martin"

	store := &fakeStore{planning: planning}
	sheets := &capturingSheets{}
	cfg := &config.Config{PlanningSheetID: "sheet-1", PublishTab: "Gardes"}

	err := PublishPlanning(context.Background(), store, sheets, cfg, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, sheets.cleared, 1)
	assert.Equal(t, "Gardes!A1:E3", sheets.updatedTo)

	require.Len(t, sheets.updateRows, 3)
	assert.Equal(t, []interface{}{"Date", "Jour", "Poste", "Site", "Assigné"}, sheets.updateRows[0])
	assert.Equal(t, []interface{}{"2026-01-03", "Samedi", "ML", "Bordeaux", "martin"}, sheets.updateRows[1])
	assert.Equal(t, []interface{}{"2026-01-03", "Samedi", "AC", "Bordeaux", "—"}, sheets.updateRows[2],
		"unfilled slots publish a placeholder")
}

func TestPublishPlanning_RequiresSheetConfig(t *testing.T) {
	store := &fakeStore{planning: weekendPlanning()}
	sheets := &capturingSheets{}

	err := PublishPlanning(context.Background(), store, sheets, &config.Config{}, zap.NewNop())
	assert.Error(t, err)
	assert.Empty(t, sheets.cleared)
}

func TestViewStats(t *testing.T) {
	planning := weekendPlanning()
	planning.Days[0].Slots[0].Assignee = "martin"
	// a plain weekday must not be counted
	monday := testDate(2026, time.January, 5)
	planning.Days = append(planning.Days, &model.Day{
		Date:  monday,
		Slots: []*model.Slot{{StartTime: monday.Add(8 * time.Hour), EndTime: monday.Add(13 * time.Hour), Abbreviation: "ML"}},
	})

	store := &fakeStore{planning: planning}
	stats, err := ViewStats(context.Background(), store, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "planning-1", stats.PlanningID)
	assert.Equal(t, 1, stats.WeekendDays)
	assert.Equal(t, 2, stats.TotalSlots)
	assert.Equal(t, 1, stats.FilledSlots)
	assert.Equal(t, 1, stats.PerPerson["martin"])

	key := testDate(2026, time.January, 3).Format(model.DateFormat)
	assert.Equal(t, []string{"AC"}, stats.UnfilledPosts[key])
}
