package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/db/testdb"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
	"github.com/jobtrack-app/jobtrack/internal/errorz/testerr"
	"github.com/jobtrack-app/jobtrack/internal/jobs"
	"github.com/jobtrack-app/jobtrack/internal/jobs/db"
)

// testTime is the moment "now" during tests, unless a test moves it.
var testTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func Test_Service_Create(t *testing.T) {
	t.Run("ok, create job", func(t *testing.T) {
		st := newServiceTest(t)

		job, err := st.svc.Create(context.Background(), st.owner, jobs.NewJob{
			Company:  "ACME",
			Position: "Gopher",
			Detail:   "https://example.com/vacancy",
			ApplyVia: "website",
		})
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if job.ID == uuid.Nil {
			t.Errorf("expected a non-zero job id")
		}
		if job.UserID != st.owner {
			t.Errorf("expected owner %s, got %s", st.owner, job.UserID)
		}
		if job.Status != jobs.StatusApplied {
			t.Errorf("expected status %q, got %q", jobs.StatusApplied, job.Status)
		}
		if !job.AppliedAt.Equal(testTime) {
			t.Errorf("expected applied at %s, got %s", testTime, job.AppliedAt)
		}

		// The job should be findable afterwards.
		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}

		if got.Company != "ACME" || got.Position != "Gopher" {
			t.Errorf("unexpected job %+v", got)
		}
	})

	t.Run("fail, missing company and position", func(t *testing.T) {
		st := newServiceTest(t)

		_, err := st.svc.Create(context.Background(), st.owner, jobs.NewJob{
			Company:  "  ",
			Position: "",
		})

		var invalid errorz.InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("expected invalid input error, got %v", err)
		}
		if len(invalid) != 2 {
			t.Fatalf("expected 2 field errors, got %d: %v", len(invalid), invalid)
		}

		// Nothing should have been persisted.
		found, err := st.svc.List(context.Background(), st.owner, jobs.ListFilter{})
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(found) != 0 {
			t.Fatalf("expected 0 jobs, got %d", len(found))
		}
	})

	for _, dep := range testerr.NewFailingDeps(testerr.Err, 3) {
		t.Run("fail, store fails", func(t *testing.T) {
			st := newServiceTest(t)
			st.store.tracker = &dep

			_, err := st.svc.Create(context.Background(), st.owner, jobs.NewJob{
				Company:  "ACME",
				Position: "Gopher",
			})
			if !errors.Is(err, testerr.Err) {
				t.Fatalf("expected error %v, got %v (via errors.Is)", testerr.Err, err)
			}
		})
	}
}

func Test_Service_Get(t *testing.T) {
	t.Run("ok, fresh job is applied", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}

		if got.Status != jobs.StatusApplied {
			t.Errorf("expected status %q, got %q", jobs.StatusApplied, got.Status)
		}
	})

	t.Run("ok, stale job shows as not responded", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		st.svc.NowFunc = func() time.Time {
			return testTime.Add(15 * 24 * time.Hour)
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}

		if got.Status != jobs.StatusNotResponded {
			t.Errorf("expected status %q, got %q", jobs.StatusNotResponded, got.Status)
		}
	})

	t.Run("ok, old job shows as rejected", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		st.svc.NowFunc = func() time.Time {
			return testTime.Add(31 * 24 * time.Hour)
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}

		if got.Status != jobs.StatusRejected {
			t.Errorf("expected status %q, got %q", jobs.StatusRejected, got.Status)
		}
	})

	t.Run("ok, derived status is not persisted", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		st.svc.NowFunc = func() time.Time {
			return testTime.Add(15 * 24 * time.Hour)
		}

		if _, err := st.svc.Get(context.Background(), st.owner, job.ID); err != nil {
			t.Fatalf("failed to get job: %v", err)
		}

		// Back at the original time the job is applied again.
		st.svc.NowFunc = func() time.Time {
			return testTime
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status != jobs.StatusApplied {
			t.Errorf("expected status %q, got %q", jobs.StatusApplied, got.Status)
		}
	})

	t.Run("fail, job owned by someone else", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		_, err := st.svc.Get(context.Background(), st.other, job.ID)
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})

	t.Run("fail, unknown job", func(t *testing.T) {
		st := newServiceTest(t)

		_, err := st.svc.Get(context.Background(), st.owner, uuid.New())
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})
}

func Test_Service_List(t *testing.T) {
	t.Run("ok, only the owner's jobs in insertion order", func(t *testing.T) {
		st := newServiceTest(t)
		st.createJob("ACME", "Gopher")
		st.createJob("Initech", "TPS Specialist")
		st.createJobFor(st.other, "Globex", "Analyst")

		found, err := st.svc.List(context.Background(), st.owner, jobs.ListFilter{})
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}

		if len(found) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(found))
		}
		if found[0].Company != "ACME" || found[1].Company != "Initech" {
			t.Errorf("unexpected order: %s, %s", found[0].Company, found[1].Company)
		}
	})

	t.Run("ok, filter on derived status", func(t *testing.T) {
		st := newServiceTest(t)

		// One stale application and one fresh one.
		st.svc.NowFunc = func() time.Time {
			return testTime.Add(-20 * 24 * time.Hour)
		}
		stale := st.createJob("ACME", "Gopher")

		st.svc.NowFunc = func() time.Time {
			return testTime
		}
		st.createJob("Initech", "TPS Specialist")

		found, err := st.svc.List(context.Background(), st.owner, jobs.ListFilter{
			Status: jobs.StatusNotResponded,
		})
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}

		if len(found) != 1 || found[0].ID != stale.ID {
			t.Fatalf("expected only the stale job, got %+v", found)
		}
		if found[0].Status != jobs.StatusNotResponded {
			t.Errorf("expected status %q, got %q", jobs.StatusNotResponded, found[0].Status)
		}
	})

	t.Run("fail, unknown filter status", func(t *testing.T) {
		st := newServiceTest(t)

		_, err := st.svc.List(context.Background(), st.owner, jobs.ListFilter{
			Status: "Ghosted",
		})

		var invalid errorz.InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("expected invalid input error, got %v", err)
		}
	})

	for _, dep := range testerr.NewFailingDeps(testerr.Err, 3) {
		t.Run("fail, store fails", func(t *testing.T) {
			st := newServiceTest(t)
			st.store.tracker = &dep

			_, err := st.svc.List(context.Background(), st.owner, jobs.ListFilter{})
			if !errors.Is(err, testerr.Err) {
				t.Fatalf("expected error %v, got %v (via errors.Is)", testerr.Err, err)
			}
		})
	}
}

func Test_Service_UpdateStatus(t *testing.T) {
	t.Run("ok, update status", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		err := st.svc.UpdateStatus(context.Background(), st.owner, job.ID, jobs.StatusHRContacted)
		if err != nil {
			t.Fatalf("failed to update status: %v", err)
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status != jobs.StatusHRContacted {
			t.Errorf("expected status %q, got %q", jobs.StatusHRContacted, got.Status)
		}
	})

	t.Run("ok, manual status survives elapsed time", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		err := st.svc.UpdateStatus(context.Background(), st.owner, job.ID, jobs.StatusUserInterview)
		if err != nil {
			t.Fatalf("failed to update status: %v", err)
		}

		st.svc.NowFunc = func() time.Time {
			return testTime.Add(40 * 24 * time.Hour)
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status != jobs.StatusUserInterview {
			t.Errorf("expected status %q, got %q", jobs.StatusUserInterview, got.Status)
		}
	})

	t.Run("fail, unknown status", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		err := st.svc.UpdateStatus(context.Background(), st.owner, job.ID, "Ghosted")

		var invalid errorz.InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("expected invalid input error, got %v", err)
		}

		got, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status != jobs.StatusApplied {
			t.Errorf("expected status %q, got %q", jobs.StatusApplied, got.Status)
		}
	})

	t.Run("fail, job owned by someone else", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		err := st.svc.UpdateStatus(context.Background(), st.other, job.ID, jobs.StatusAdmitted)
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})
}

func Test_Service_UpdateFields(t *testing.T) {
	t.Run("ok, patch some fields", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		city := "Amsterdam"
		quals := []string{"Go", "SQL"}
		got, err := st.svc.UpdateFields(context.Background(), st.owner, job.ID, jobs.FieldsPatch{
			City:           &city,
			Qualifications: &quals,
		})
		if err != nil {
			t.Fatalf("failed to update fields: %v", err)
		}

		if got.City != city {
			t.Errorf("expected city %q, got %q", city, got.City)
		}
		if len(got.Qualifications) != 2 {
			t.Errorf("expected 2 qualifications, got %v", got.Qualifications)
		}
		// Untouched fields stay as they were.
		if got.Company != "ACME" || got.Position != "Gopher" {
			t.Errorf("unexpected job %+v", got)
		}
	})

	t.Run("ok, applied at is immutable", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		company := "Initech"
		got, err := st.svc.UpdateFields(context.Background(), st.owner, job.ID, jobs.FieldsPatch{
			Company: &company,
		})
		if err != nil {
			t.Fatalf("failed to update fields: %v", err)
		}

		if !got.AppliedAt.Equal(job.AppliedAt) {
			t.Errorf("expected applied at %s, got %s", job.AppliedAt, got.AppliedAt)
		}
	})

	t.Run("fail, company cannot be blanked out", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		blank := " "
		_, err := st.svc.UpdateFields(context.Background(), st.owner, job.ID, jobs.FieldsPatch{
			Company: &blank,
		})

		var invalid errorz.InvalidInput
		if !errors.As(err, &invalid) {
			t.Fatalf("expected invalid input error, got %v", err)
		}
	})

	t.Run("fail, job owned by someone else", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		company := "Initech"
		_, err := st.svc.UpdateFields(context.Background(), st.other, job.ID, jobs.FieldsPatch{
			Company: &company,
		})
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})
}

func Test_Service_Delete(t *testing.T) {
	t.Run("ok, delete job", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		if err := st.svc.Delete(context.Background(), st.owner, job.ID); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}

		_, err := st.svc.Get(context.Background(), st.owner, job.ID)
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected error %v, got %v", errorz.ErrNotFound, err)
		}
	})

	t.Run("ok, deleting twice is not an error", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		if err := st.svc.Delete(context.Background(), st.owner, job.ID); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}
		if err := st.svc.Delete(context.Background(), st.owner, job.ID); err != nil {
			t.Fatalf("failed to delete job again: %v", err)
		}
	})

	t.Run("ok, deleting someone else's job does nothing", func(t *testing.T) {
		st := newServiceTest(t)
		job := st.createJob("ACME", "Gopher")

		if err := st.svc.Delete(context.Background(), st.other, job.ID); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}

		// The job is still there for its owner.
		if _, err := st.svc.Get(context.Background(), st.owner, job.ID); err != nil {
			t.Fatalf("expected job to survive, got %v", err)
		}
	})
}

func Test_Service_Stats(t *testing.T) {
	t.Run("ok, aggregates per day and per status", func(t *testing.T) {
		st := newServiceTest(t)

		// Two applications on one day, sixteen days before the others.
		st.svc.NowFunc = func() time.Time {
			return testTime.Add(-16 * 24 * time.Hour)
		}
		st.createJob("ACME", "Gopher")
		st.createJob("Globex", "Analyst")

		st.svc.NowFunc = func() time.Time {
			return testTime
		}
		st.createJob("Initech", "TPS Specialist")

		stats, err := st.svc.Stats(context.Background(), st.owner)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}

		wantDays := []jobs.DayCount{
			{Date: "2024-02-14", Count: 2},
			{Date: "2024-03-01", Count: 1},
		}
		if len(stats.PerDay) != len(wantDays) {
			t.Fatalf("expected %d day counts, got %+v", len(wantDays), stats.PerDay)
		}
		for i, want := range wantDays {
			if stats.PerDay[i] != want {
				t.Errorf("expected day count %+v, got %+v", want, stats.PerDay[i])
			}
		}

		wantStatuses := []jobs.StatusCount{
			{Status: jobs.StatusApplied, Count: 1},
			{Status: jobs.StatusNotResponded, Count: 2},
		}
		if len(stats.PerStatus) != len(wantStatuses) {
			t.Fatalf("expected %d status counts, got %+v", len(wantStatuses), stats.PerStatus)
		}
		for i, want := range wantStatuses {
			if stats.PerStatus[i] != want {
				t.Errorf("expected status count %+v, got %+v", want, stats.PerStatus[i])
			}
		}
	})

	t.Run("ok, no jobs gives empty aggregates", func(t *testing.T) {
		st := newServiceTest(t)

		stats, err := st.svc.Stats(context.Background(), st.owner)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}

		if len(stats.PerDay) != 0 || len(stats.PerStatus) != 0 {
			t.Fatalf("expected empty stats, got %+v", stats)
		}
	})
}

type svcTest struct {
	t     *testing.T
	svc   *jobs.Service
	store *testStore
	owner uuid.UUID
	other uuid.UUID
}

func newServiceTest(t *testing.T) *svcTest {
	testDB := testdb.RunWhile(t, true)

	test := &svcTest{
		t: t,
		store: &testStore{
			store: db.New(testDB),
			// A negative index never matches, this tracker never fails.
			tracker: &testerr.FailingDep{FailAtIndex: -1},
		},
		owner: uuid.New(),
		other: uuid.New(),
	}

	test.svc = jobs.NewService(test.store, jobs.DefaultStatuses)
	test.svc.NowFunc = func() time.Time {
		return testTime
	}

	return test
}

func (st *svcTest) createJob(company, position string) jobs.Job {
	return st.createJobFor(st.owner, company, position)
}

func (st *svcTest) createJobFor(owner uuid.UUID, company, position string) jobs.Job {
	st.t.Helper()

	job, err := st.svc.Create(context.Background(), owner, jobs.NewJob{
		Company:  company,
		Position: position,
	})
	if err != nil {
		st.t.Fatalf("failed to create job: %v", err)
	}

	return job
}

// testStore wraps a real store but uses a testerr.FailingDep to
// possibly fail on certain method calls.
type testStore struct {
	store   jobs.Store
	tracker *testerr.FailingDep
}

func (f *testStore) BeginTx(ctx context.Context) (jobs.Tx, error) {
	return testerr.MaybeFail(f.tracker, func() (jobs.Tx, error) {
		realTx, err := f.store.BeginTx(ctx)
		if err != nil {
			return nil, err
		}
		return &testTx{
			store: f,
			tx:    realTx,
		}, nil
	})
}

type testTx struct {
	store *testStore
	tx    jobs.Tx
}

func (tx *testTx) Commit() error {
	return testerr.MaybeFailErrFunc(tx.store.tracker, func() error {
		return tx.tx.Commit()
	})
}

func (tx *testTx) Rollback() error {
	// Rollbacks happen after a failure, don't fail them as well.
	return tx.tx.Rollback()
}

func (tx *testTx) CreateJob(j *jobs.Job) error {
	return testerr.MaybeFailErrFunc(tx.store.tracker, func() error {
		return tx.tx.CreateJob(j)
	})
}

func (tx *testTx) UpdateJob(j *jobs.Job) error {
	return testerr.MaybeFailErrFunc(tx.store.tracker, func() error {
		return tx.tx.UpdateJob(j)
	})
}

func (tx *testTx) DeleteJobs(filter *jobs.JobFilter) (int, error) {
	return testerr.MaybeFail(tx.store.tracker, func() (int, error) {
		return tx.tx.DeleteJobs(filter)
	})
}

func (tx *testTx) FindJobs(filter *jobs.JobFilter) ([]jobs.Job, error) {
	return testerr.MaybeFail(tx.store.tracker, func() ([]jobs.Job, error) {
		return tx.tx.FindJobs(filter)
	})
}
