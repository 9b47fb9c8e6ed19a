package dashboard_test

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/dalemusser/dojo/internal/app/features/dashboard"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/domain/models"
	"github.com/dalemusser/dojo/internal/testutil"
)

func groupIDs(gs []models.Group) map[string]bool {
	out := map[string]bool{}
	for _, g := range gs {
		out[g.ID] = true
	}
	return out
}

func TestLoad_PartitionsByMembership(t *testing.T) {
	env := testutil.NewEnv(t)
	other := env.Fake.AddUser("bob", "bob@b.com", "secret", "")
	me := env.SignIn("ann", "ann@b.com", "secret")

	mine := env.Fake.AddGroup("Mine", "created by ann", me)
	shared := env.Fake.AddGroup("Shared", "bob's, ann joined", other, me)
	theirs := env.Fake.AddGroup("Theirs", "bob only", other)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := env.App.Dashboard.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	v := env.App.Dashboard.View()
	gotMine, gotOthers := groupIDs(v.MyGroups), groupIDs(v.OtherGroups)
	if !gotMine[mine] || !gotMine[shared] || len(gotMine) != 2 {
		t.Errorf("MyGroups = %v", gotMine)
	}
	if !gotOthers[theirs] || len(gotOthers) != 1 {
		t.Errorf("OtherGroups = %v", gotOthers)
	}
	if v.Loading || v.Error != "" {
		t.Errorf("loading=%v error=%q", v.Loading, v.Error)
	}
	if v.Username != "ann" {
		t.Errorf("Username = %q", v.Username)
	}
}

func TestLoad_FailureSetsPageErrorAndRetryRecovers(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")
	env.Fake.Fail("GET /groups/", http.StatusInternalServerError, "database unavailable")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := env.App.Dashboard.Load(ctx); err == nil {
		t.Fatal("expected an error")
	}
	if got := env.App.Dashboard.View().Error; got != "database unavailable" {
		t.Errorf("Error = %q", got)
	}

	env.Fake.Heal("GET /groups/")
	if err := env.App.Dashboard.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got := env.App.Dashboard.View().Error; got != "" {
		t.Errorf("Error after retry = %q", got)
	}
}

func TestJoinGroup_TwiceStaysConsistent(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.Fake.AddUser("bob", "bob@b.com", "secret", "")
	gid := env.Fake.AddGroup("Graphs", "graph problems", owner)
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := env.App.Dashboard.JoinGroup(ctx, gid); err != nil {
			t.Fatalf("join %d: %v", i+1, err)
		}
		v := env.App.Dashboard.View()
		if !groupIDs(v.MyGroups)[gid] {
			t.Errorf("join %d: group not in MyGroups", i+1)
		}
		if groupIDs(v.OtherGroups)[gid] {
			t.Errorf("join %d: group still in OtherGroups", i+1)
		}
		if v.Joining[gid] {
			t.Errorf("join %d: still marked joining", i+1)
		}
	}
	if n := env.Notes.Count(notify.Success); n != 2 {
		t.Errorf("success toasts = %d, want 2", n)
	}
}

func TestJoinGroup_FailureToast(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := env.Fake.Hits("GET /groups/")
	if err := env.App.Dashboard.JoinGroup(ctx, "missing"); err == nil {
		t.Fatal("expected an error")
	}
	if !env.Notes.Has(notify.Error, "Could not join group: Group not found") {
		t.Errorf("notes = %v", env.Notes.Events())
	}
	if env.Fake.Hits("GET /groups/") != before {
		t.Error("a failed join must not reload")
	}
}

func TestJoinGroup_PendingUntilReload(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.Fake.AddUser("bob", "bob@b.com", "secret", "")
	gid := env.Fake.AddGroup("Graphs", "graph problems", owner)
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	release := make(chan struct{})
	env.Fake.Hold("GET /groups/", release)
	before := env.Fake.Hits("GET /groups/")

	done := make(chan error, 1)
	go func() { done <- env.App.Dashboard.JoinGroup(ctx, gid) }()

	waitFor(t, func() bool { return env.Fake.Hits("GET /groups/") > before })
	v := env.App.Dashboard.View()
	if !v.Joining[gid] {
		t.Error("group should be marked joining while the reload is pending")
	}
	if groupIDs(v.MyGroups)[gid] {
		t.Error("membership must not show before the reload resolves")
	}
	if err := env.App.Dashboard.JoinGroup(ctx, gid); !errors.Is(err, formpipe.ErrInFlight) {
		t.Errorf("second join err = %v, want ErrInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if !groupIDs(env.App.Dashboard.View().MyGroups)[gid] {
		t.Error("group should be in MyGroups after the reload")
	}
}

func TestCreateGroup(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	env.App.Dashboard.OpenCreate()
	err := env.App.Dashboard.CreateGroup(ctx, dashboard.CreateInput{Name: "G", Description: ""})
	if !errors.Is(err, formpipe.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	st := env.App.Dashboard.View().CreateStatus
	if st.FieldErrors["name"] != "Too short" || st.FieldErrors["description"] != "Required" {
		t.Errorf("field errors = %v", st.FieldErrors)
	}
	if env.Fake.Hits("POST /groups/") != 0 {
		t.Error("invalid input must not be sent")
	}

	if err := env.App.Dashboard.CreateGroup(ctx, dashboard.CreateInput{Name: "Graphs", Description: "graph problems"}); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	v := env.App.Dashboard.View()
	if v.CreateOpen || v.CreateInput != (dashboard.CreateInput{}) {
		t.Errorf("dialog open=%v input=%+v, want closed and cleared", v.CreateOpen, v.CreateInput)
	}
	if len(v.MyGroups) != 1 || v.MyGroups[0].Name != "Graphs" {
		t.Errorf("MyGroups = %+v", v.MyGroups)
	}
}

func TestLoad_StaleResponseDiscarded(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	release := make(chan struct{})
	env.Fake.Hold("GET /groups/", release)
	before := env.Fake.Hits("GET /groups/")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = env.App.Dashboard.Load(ctx)
	}()
	waitFor(t, func() bool { return env.Fake.Hits("GET /groups/") > before })

	// The held load is now stale.
	env.Fake.Hold("GET /groups/", nil)
	env.Fake.Fail("GET /groups/", http.StatusServiceUnavailable, "try later")
	_ = env.App.Dashboard.Load(ctx)
	env.Fake.Heal("GET /groups/")

	close(release)
	wg.Wait()

	if got := env.App.Dashboard.View().Error; got != "try later" {
		t.Errorf("Error = %q; the older response overwrote the newer one", got)
	}
}

func TestReset_DropsInFlightLoad(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Fake.AddGroup("Graphs", "graph problems", env.Fake.AddUser("bob", "bob@b.com", "secret", ""))
	env.SignIn("ann", "ann@b.com", "secret")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	release := make(chan struct{})
	env.Fake.Hold("GET /groups/", release)
	before := env.Fake.Hits("GET /groups/")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = env.App.Dashboard.Load(ctx)
	}()
	waitFor(t, func() bool { return env.Fake.Hits("GET /groups/") > before })

	env.App.Dashboard.Reset()
	close(release)
	<-done

	if v := env.App.Dashboard.View(); len(v.OtherGroups) != 0 {
		t.Errorf("OtherGroups = %v after reset, want empty", v.OtherGroups)
	}
}
