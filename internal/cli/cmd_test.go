package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupJSON is a one-week group: pages 1-20 of one book, one hour every
// day, six study days then one review day.
const groupJSON = `{
  "group": {
    "id": "g1", "student_id": "student-1", "name": "Week one",
    "period_start": "2025-03-03", "period_end": "2025-03-09",
    "study_days": 6, "review_days": 1
  },
  "contents": [
    {"ref": "algebra", "content_type": "book", "content_id": "book-1", "start_range": 1, "end_range": 20, "subject": "math"}
  ],
  "blocks": [
    {"day_of_week": 0, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 1, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 2, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 3, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 4, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 5, "start_time": "09:00", "end_time": "10:00"},
    {"day_of_week": 6, "start_time": "09:00", "end_time": "10:00"}
  ]
}`

const holidaysICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:1@test\r\n" +
	"DTSTART;VALUE=DATE:20250308\r\n" +
	"SUMMARY:Family vacation\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

type testEnv struct {
	app   *App
	plans *repository.SQLitePlanRepo
	jobs  *service.InProcessJobQueue
	dir   string
}

// newTestEnv wires a full App backed by an in-memory DB. The clock is
// fixed at 2025-03-05.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(conn)
	groups := repository.NewSQLiteGroupRepo(conn)
	plans := repository.NewSQLitePlanRepo(conn)
	logs := repository.NewSQLiteRescheduleLogRepo(conn)

	cfg := config.DefaultScheduler()
	gen := scheduler.NewGenerator(scheduler.NewEstimator(cfg), cfg)
	cache, err := reschedule.NewPreviewCache(16, nil)
	require.NoError(t, err)

	now := func() time.Time { return testutil.Date("2025-03-05") }
	resched := service.NewRescheduleService(service.RescheduleDeps{
		UoW:        uow,
		Engine:     reschedule.NewEngine(gen),
		Cache:      cache,
		BatchLimit: 2,
		Now:        now,
	})

	ctx, cancel := context.WithCancel(context.Background())
	jobs := service.NewJobQueue(resched, 1, 4, nil)
	jobs.Start(ctx)
	t.Cleanup(func() {
		jobs.Close()
		cancel()
	})

	return &testEnv{
		app: &App{
			Groups:        service.NewGroupService(groups, plans),
			Generate:      service.NewGenerateService(uow, gen, nil),
			Delay:         service.NewDelayService(groups, plans),
			Reschedule:    resched,
			Suggest:       service.NewSuggestionService(uow, logs),
			Import:        service.NewImportService(uow, nil),
			Export:        service.NewExportService(groups, plans),
			Jobs:          jobs,
			Now:           now,
			IsInteractive: func() bool { return false },
		},
		plans: plans,
		jobs:  jobs,
		dir:   t.TempDir(),
	}
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// seed imports and generates the week-one group, then completes the
// first day.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	_, err := executeCmd(t, e.app, "group", "import", e.writeFile(t, "group.json", groupJSON))
	require.NoError(t, err)
	_, err = executeCmd(t, e.app, "generate", "g1")
	require.NoError(t, err)

	plans, err := e.plans.ListByGroup(context.Background(), "g1")
	require.NoError(t, err)
	for _, p := range plans {
		if domain.DateKey(p.PlanDate) == "2025-03-03" {
			require.NoError(t, e.plans.UpdateStatus(context.Background(), p.ID, domain.PlanCompleted))
		}
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

func TestGroupImportAndList(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "group", "import", env.writeFile(t, "group.json", groupJSON))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported group Week one [g1]")
	assert.Contains(t, out, "Blocks:     7")

	out, err = executeCmd(t, env.app, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "6+1")
}

func TestGroupImport_InvalidFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "group", "import", env.writeFile(t, "bad.json", `{"group": {}}`))
	assert.Error(t, err)

	out, err := executeCmd(t, env.app, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No plan groups.")
}

func TestGenerateAndListPlans(t *testing.T) {
	env := newTestEnv(t)
	_, err := executeCmd(t, env.app, "group", "import", env.writeFile(t, "group.json", groupJSON))
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "generate", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 3 plans for g1")

	out, err = executeCmd(t, env.app, "plans", "list", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "3 plans, 3h scheduled")
	assert.Contains(t, out, "2025-03-03 (2d ago)")

	out, err = executeCmd(t, env.app, "plans", "list", "g1", "--from", "2025-03-09", "--to", "2025-03-09")
	require.NoError(t, err)
	assert.Contains(t, out, "1 plans")
}

func TestResolveGroupID_Prefix(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	id, err := resolveGroupID(context.Background(), env.app, "g")
	require.NoError(t, err)
	assert.Equal(t, "g1", id)

	_, err = resolveGroupID(context.Background(), env.app, "x")
	assert.ErrorContains(t, err, "group not found")
}

func TestReschedulePreviewThenApply(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := executeCmd(t, env.app, "reschedule", "preview", "g1", "--adjust", "book-1:range:1-30")
	require.NoError(t, err)
	assert.Contains(t, out, "g1 (v2)")
	assert.Contains(t, out, "2 → 3")
	assert.Contains(t, out, "- delete")
	assert.Contains(t, out, "~ update")
	assert.Contains(t, out, "+ create")

	_, err = executeCmd(t, env.app, "reschedule", "apply", "g1", "--adjust", "book-1:range:1-30")
	assert.ErrorContains(t, err, "--yes")

	out, err = executeCmd(t, env.app, "reschedule", "apply", "g1", "--adjust", "book-1:range:1-30", "--yes", "--reason", "more chapters")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 4 operations to g1 (now v3)")

	out, err = executeCmd(t, env.app, "plans", "list", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "4 plans")

	out, err = executeCmd(t, env.app, "patterns", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "math")
	assert.Contains(t, out, "g1/algebra")
}

func TestRescheduleApply_ConfirmDeclined(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	var asked string
	env.app.IsInteractive = func() bool { return true }
	env.app.Confirm = func(title string) (bool, error) {
		asked = title
		return false, nil
	}

	out, err := executeCmd(t, env.app, "reschedule", "apply", "g1", "--adjust", "book-1:range:1-30")
	require.NoError(t, err)
	assert.Equal(t, "Apply 4 operations to g1?", asked)
	assert.Contains(t, out, "Cancelled.")

	out, err = executeCmd(t, env.app, "plans", "list", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "3 plans")
}

func TestRescheduleApply_Async(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := executeCmd(t, env.app, "reschedule", "apply", "g1", "--adjust", "book-1:range:1-30", "--yes", "--async")
	require.NoError(t, err)
	assert.Contains(t, out, "Queued job")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "g1  applied ")
}

func TestReschedule_FlagErrors(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no adjust", []string{"reschedule", "preview", "g1"}, "at least one --adjust"},
		{"bad adjust", []string{"reschedule", "preview", "g1", "--adjust", "book-1:shrink"}, "unknown change type"},
		{"half window", []string{"reschedule", "preview", "g1", "--adjust", "book-1:full", "--from", "2025-03-06"}, "--from and --to"},
		{"bad date", []string{"reschedule", "preview", "g1", "--adjust", "book-1:full", "--today", "05/03/2025"}, "invalid --today"},
		{"engine validation", []string{"reschedule", "preview", "g1", "--adjust", "book-1:range:9-3"}, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, env.app, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDelayAndSuggest(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := executeCmd(t, env.app, "delay", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "1 of 3 plans")

	out, err = executeCmd(t, env.app, "delay", "--student", "student-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Week one")

	_, err = executeCmd(t, env.app, "delay")
	assert.ErrorContains(t, err, "--student")

	out, err = executeCmd(t, env.app, "suggest", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "studyplan reschedule preview g1 --adjust")
}

func TestExclusionsImport(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := executeCmd(t, env.app, "exclusions", "import", "g1", env.writeFile(t, "holidays.ics", holidaysICS))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 excluded dates into g1")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	target := filepath.Join(env.dir, "week.ics")
	out, err := executeCmd(t, env.app, "export", "g1", "--format", "ics", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 plans")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "BEGIN:VEVENT"))

	target = filepath.Join(env.dir, "week.xlsx")
	out, err = executeCmd(t, env.app, "export", "g1", "--format", "xlsx", "-o", target, "--to", "2025-03-04")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 plans")

	target = filepath.Join(env.dir, "week.pdf")
	_, err = executeCmd(t, env.app, "export", "g1", "--format", "pdf", "-o", target)
	assert.Error(t, err)
	assert.NoFileExists(t, target)
}

func TestPlansBrowse_NeedsTerminal(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	_, err := executeCmd(t, env.app, "plans", "browse", "g1")
	assert.ErrorContains(t, err, "needs a terminal")
}

func TestRescheduleApply_LargeGroupGoesAsync(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	env.app.AsyncAfterPlans = 3

	out, err := executeCmd(t, env.app, "reschedule", "apply", "g1", "--adjust", "book-1:range:1-30", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Queued job")
}
