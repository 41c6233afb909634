package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

// fakeStore is an in-memory Store with the same version-check semantics
// as the redis-backed one.
type fakeStore struct {
	roadmaps  map[string]*types.Roadmap
	schedules map[string]*types.ScheduledTask
	autoposts map[string]*types.AutoPostConfig
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roadmaps:  make(map[string]*types.Roadmap),
		schedules: make(map[string]*types.ScheduledTask),
		autoposts: make(map[string]*types.AutoPostConfig),
	}
}

func deepCopy(r *types.Roadmap) *types.Roadmap {
	data, _ := json.Marshal(r)
	var out types.Roadmap
	_ = json.Unmarshal(data, &out)
	return &out
}

func (f *fakeStore) CreateRoadmap(ctx context.Context, r *types.Roadmap) error {
	if _, ok := f.roadmaps[r.ID]; ok {
		return fmt.Errorf("%w: roadmap %q", roadmap.ErrAlreadyExists, r.ID)
	}
	r.Version = 1
	f.roadmaps[r.ID] = deepCopy(r)
	return nil
}

func (f *fakeStore) GetRoadmap(ctx context.Context, id string) (*types.Roadmap, error) {
	r, ok := f.roadmaps[id]
	if !ok {
		return nil, fmt.Errorf("%w: roadmap %q", roadmap.ErrNotFound, id)
	}
	return deepCopy(r), nil
}

func (f *fakeStore) SaveRoadmap(ctx context.Context, r *types.Roadmap) error {
	f.saveCalls++
	current, ok := f.roadmaps[r.ID]
	if !ok {
		return fmt.Errorf("%w: roadmap %q", roadmap.ErrNotFound, r.ID)
	}
	if current.Version != r.Version {
		return fmt.Errorf("%w: roadmap %q", roadmap.ErrConflict, r.ID)
	}
	r.Version++
	f.roadmaps[r.ID] = deepCopy(r)
	return nil
}

func (f *fakeStore) DeleteRoadmap(ctx context.Context, id string) (bool, error) {
	_, ok := f.roadmaps[id]
	delete(f.roadmaps, id)
	return ok, nil
}

func (f *fakeStore) GetRoadmapsByGuild(ctx context.Context, guildID string) ([]*types.Roadmap, error) {
	var out []*types.Roadmap
	for _, r := range f.roadmaps {
		if r.GuildID == guildID {
			out = append(out, deepCopy(r))
		}
	}
	return out, nil
}

func (f *fakeStore) CreateScheduledTask(ctx context.Context, st *types.ScheduledTask) error {
	f.schedules[st.ID] = st
	return nil
}

func (f *fakeStore) GetScheduledTasks(ctx context.Context) ([]*types.ScheduledTask, error) {
	var out []*types.ScheduledTask
	for _, st := range f.schedules {
		out = append(out, st)
	}
	return out, nil
}

func (f *fakeStore) DeleteScheduledTask(ctx context.Context, id string) (bool, error) {
	_, ok := f.schedules[id]
	delete(f.schedules, id)
	return ok, nil
}

func (f *fakeStore) SaveAutoPost(ctx context.Context, cfg *types.AutoPostConfig) error {
	f.autoposts[cfg.GuildID] = cfg
	return nil
}

type fakeMessenger struct {
	sent      []*types.Reply
	deleted   []string // "channel:message"
	reactions []string // "add channel:message emoji" / "remove ..."
}

func (f *fakeMessenger) SendReply(reply *types.Reply) (string, error) {
	f.sent = append(f.sent, reply)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeMessenger) PostMessage(channelID, content string) (string, error) {
	f.sent = append(f.sent, &types.Reply{ChannelID: channelID, Content: content})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeMessenger) DeleteMessage(channelID, messageID string) error {
	f.deleted = append(f.deleted, channelID+":"+messageID)
	return nil
}

func (f *fakeMessenger) AddReaction(channelID, messageID, emoji string) error {
	f.reactions = append(f.reactions, "add "+channelID+":"+messageID+" "+emoji)
	return nil
}

func (f *fakeMessenger) RemoveReaction(channelID, messageID, emoji string) error {
	f.reactions = append(f.reactions, "remove "+channelID+":"+messageID+" "+emoji)
	return nil
}

func testDeps() (*Dependencies, *fakeStore, *fakeMessenger) {
	store := newFakeStore()
	gw := &fakeMessenger{}
	return &Dependencies{
		Store:   store,
		Gateway: gw,
		Confirm: NewConfirmTracker(),
	}, store, gw
}

func event(userID string, roleIDs []string, manageRoles bool) *types.MessageEvent {
	return &types.MessageEvent{
		Type:         "message",
		MessageID:    "m-1",
		ChannelID:    "chan-1",
		GuildID:      "guild-1",
		ActorID:      userID,
		ActorRoleIDs: roleIDs,
		ManageRoles:  manageRoles,
	}
}

func run(t *testing.T, deps *Dependencies, cmd Command, ev *types.MessageEvent, args ...string) *types.Reply {
	t.Helper()
	reply, err := cmd.Execute(context.Background(), &Request{
		Event: ev,
		Actor: policy.FromEvent(ev),
		Name:  cmd.Name,
		Args:  args,
	}, deps)
	if err != nil {
		t.Fatalf("%s: unexpected infrastructure error: %v", cmd.Name, err)
	}
	return reply
}

func TestCreateAddAndComplete(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)

	reply := run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("create failed: %+v", reply.Embed)
	}

	reply = run(t, deps, addTaskCommand, admin, "backend", "2", "Node.js", "Learn", "Node")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("addtask failed: %+v", reply.Embed)
	}

	r, err := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Tasks) != 1 || r.Tasks[0].ID != 1 {
		t.Fatalf("tasks = %+v", r.Tasks)
	}

	// A role holder completes the task; the second call reports it.
	member := event("U2", []string{"R1"}, false)
	reply = run(t, deps, doneCommand, member, "1")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("done failed: %+v", reply.Embed)
	}

	r, _ = store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if len(r.Tasks[0].CompletedBy) != 1 || r.Tasks[0].CompletedBy[0] != "U2" {
		t.Fatalf("CompletedBy = %v", r.Tasks[0].CompletedBy)
	}

	reply = run(t, deps, doneCommand, member, "1")
	if !strings.Contains(reply.Embed.Title, "Already Completed") {
		t.Fatalf("second done: %+v", reply.Embed)
	}
	r, _ = store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if len(r.Tasks[0].CompletedBy) != 1 {
		t.Errorf("CompletedBy grew on repeat: %v", r.Tasks[0].CompletedBy)
	}
}

func TestCreateDuplicateLeavesOriginalUntouched(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)

	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")

	reply := run(t, deps, createCommand, admin, "backend", "role:<@&R2>")
	if !strings.Contains(reply.Embed.Title, "Already Exists") {
		t.Fatalf("duplicate create: %+v", reply.Embed)
	}

	r, _ := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if r.RoleID != "R1" || len(r.Tasks) != 1 {
		t.Errorf("original roadmap was altered: %+v", r)
	}
}

func TestDoneWithoutRoleIsDeniedAndStoreUnchanged(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")
	saves := store.saveCalls

	outsider := event("U3", []string{"R9"}, false)
	reply := run(t, deps, doneCommand, outsider, "1", "backend")
	if reply.Embed.Color != types.ColorRed {
		t.Fatalf("expected denial, got %+v", reply.Embed)
	}
	if !strings.Contains(reply.Embed.Description, "role") {
		t.Errorf("denial should name the missing credential: %q", reply.Embed.Description)
	}

	if store.saveCalls != saves {
		t.Error("denied call must not write to the store")
	}
	r, _ := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if len(r.Tasks[0].CompletedBy) != 0 {
		t.Errorf("store changed after denial: %v", r.Tasks[0].CompletedBy)
	}
}

func TestDoneResolvesAccessibleRoadmaps(t *testing.T) {
	deps, _, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, createCommand, admin, "frontend", "role:<@&R2>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")
	run(t, deps, addTaskCommand, admin, "frontend", "1", "CSS", "Learn", "flexbox")

	// No accessible roadmap.
	nobody := event("U5", nil, false)
	reply := run(t, deps, doneCommand, nobody, "1")
	if !strings.Contains(reply.Embed.Title, "No Available Roadmaps") {
		t.Errorf("zero accessible: %+v", reply.Embed)
	}

	// Exactly one accessible: no name needed.
	single := event("U2", []string{"R1"}, false)
	reply = run(t, deps, doneCommand, single, "1")
	if reply.Embed.Color != types.ColorGreen {
		t.Errorf("one accessible: %+v", reply.Embed)
	}

	// Two accessible: must name the roadmap, never guess.
	both := event("U4", []string{"R1", "R2"}, false)
	reply = run(t, deps, doneCommand, both, "1")
	if !strings.Contains(reply.Embed.Title, "Multiple Roadmaps") {
		t.Errorf("many accessible: %+v", reply.Embed)
	}

	reply = run(t, deps, doneCommand, both, "1", "frontend")
	if reply.Embed.Color != types.ColorGreen {
		t.Errorf("explicit name should resolve: %+v", reply.Embed)
	}
}

func TestDeleteRoadmapConfirmationFlow(t *testing.T) {
	deps, store, gw := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")

	reply := run(t, deps, deleteRoadmapCommand, admin, "backend")
	if reply != nil {
		t.Fatalf("prompt should be sent directly, got %+v", reply)
	}
	if len(gw.sent) != 1 || !strings.Contains(gw.sent[0].Embed.Title, "Confirm") {
		t.Fatalf("sent = %+v", gw.sent)
	}

	p, ok := deps.Confirm.Take("chan-1", "U1")
	if !ok {
		t.Fatal("pending confirmation missing")
	}
	if !p.Matches("confirm delete backend") {
		t.Error("exact phrase should match")
	}
	if p.Matches("delete backend") {
		t.Error("partial phrase must not match")
	}

	finish, err := FinishDelete(context.Background(), deps, event("U1", nil, true), p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(finish.Embed.Title, "Deleted") {
		t.Errorf("finish = %+v", finish.Embed)
	}
	if _, err := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend")); err == nil {
		t.Error("roadmap should be gone")
	}
}

func TestHideIsPerUserThroughCommands(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "rebasing")

	hider := event("U2", []string{"R1"}, false)
	reply := run(t, deps, hideCommand, hider, "1")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("hide failed: %+v", reply.Embed)
	}

	r, _ := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if visible := roadmap.VisibleTasksFor(r, "U2"); len(visible) != 1 || visible[0].ID != 2 {
		t.Errorf("hider's view = %+v", visible)
	}
	if visible := roadmap.VisibleTasksFor(r, "U4"); len(visible) != 2 {
		t.Errorf("other user's view shrank: %+v", visible)
	}

	reply = run(t, deps, unhideCommand, hider, "all")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("unhide failed: %+v", reply.Embed)
	}
	r, _ = store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if visible := roadmap.VisibleTasksFor(r, "U2"); len(visible) != 2 {
		t.Errorf("unhide all did not restore: %+v", visible)
	}
}

func TestBulkAddAssignsConsecutiveIDs(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")

	reply := run(t, deps, bulkAddTaskCommand, admin,
		"backend", "2", "T:Node.js", "Learn", "basics", "|", "Setup", "server", "|", "T:Database", "Create", "models")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("bulkaddtask failed: %+v", reply.Embed)
	}

	r, _ := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if len(r.Tasks) != 3 {
		t.Fatalf("tasks = %+v", r.Tasks)
	}
	for i, task := range r.Tasks {
		if task.ID != i+1 {
			t.Errorf("task %d has id %d", i, task.ID)
		}
		if task.WeekNumber != 2 {
			t.Errorf("task %d has week %d", i, task.WeekNumber)
		}
	}
	if r.Tasks[1].Topic != "Node.js" || r.Tasks[2].Topic != "Database" {
		t.Errorf("topics = %q %q", r.Tasks[1].Topic, r.Tasks[2].Topic)
	}
}

func TestDeleteTaskRenumbersForEveryone(t *testing.T) {
	deps, store, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "First")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Second")

	reply := run(t, deps, deleteTaskCommand, admin, "1", "backend")
	if reply.Embed.Color != types.ColorGreen {
		t.Fatalf("deletetask failed: %+v", reply.Embed)
	}

	r, _ := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if len(r.Tasks) != 1 || r.Tasks[0].ID != 1 || r.Tasks[0].Title != "Second" {
		t.Errorf("tasks after delete = %+v", r.Tasks)
	}
}

func TestShowRoadmapRequiresRole(t *testing.T) {
	deps, _, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")

	outsider := event("U3", []string{"R9"}, false)
	reply := run(t, deps, showRoadmapCommand, outsider, "backend")
	if reply.Embed.Color != types.ColorRed {
		t.Fatalf("expected denial, got %+v", reply.Embed)
	}

	holder := event("U2", []string{"R1"}, false)
	reply = run(t, deps, showRoadmapCommand, holder, "backend")
	if reply.Embed.Color == types.ColorRed {
		t.Fatalf("role holder should see the roadmap: %+v", reply.Embed)
	}
}

func TestTaskStatsRequiresManageRoles(t *testing.T) {
	deps, _, _ := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")

	// Even the roadmap role does not grant access to guild-wide stats.
	holder := event("U2", []string{"R1"}, false)
	reply := run(t, deps, taskStatsCommand, holder, "backend")
	if reply.Embed.Color != types.ColorRed || !strings.Contains(reply.Embed.Title, "Permission") {
		t.Fatalf("expected denial, got %+v", reply.Embed)
	}

	reply = run(t, deps, taskStatsCommand, admin, "backend")
	if reply.Embed.Color == types.ColorRed {
		t.Fatalf("admin should see stats: %+v", reply.Embed)
	}
}

func TestEmptyRoadmapConfirmationFlow(t *testing.T) {
	deps, store, gw := testDeps()
	admin := event("U1", []string{"R1"}, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "rebasing")

	reply := run(t, deps, emptyRoadmapCommand, admin, "backend")
	if reply != nil {
		t.Fatalf("prompt should be sent directly, got %+v", reply)
	}
	if len(gw.sent) != 1 || !strings.Contains(gw.sent[0].Embed.Title, "Confirm") {
		t.Fatalf("sent = %+v", gw.sent)
	}

	p, ok := deps.Confirm.Take("chan-1", "U1")
	if !ok {
		t.Fatal("pending confirmation missing")
	}
	if p.Kind != ConfirmEmptyRoadmap {
		t.Errorf("kind = %v", p.Kind)
	}
	if !p.Matches("confirm empty backend") || p.Matches("confirm delete backend") {
		t.Error("phrase matching is off")
	}

	finish, err := FinishEmpty(context.Background(), deps, event("U1", []string{"R1"}, true), p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(finish.Embed.Title, "Emptied") {
		t.Errorf("finish = %+v", finish.Embed)
	}
	if len(finish.Embed.Fields) == 0 || !strings.Contains(finish.Embed.Fields[0].Value, "2 tasks") {
		t.Errorf("removed count missing: %+v", finish.Embed.Fields)
	}

	r, err := store.GetRoadmap(context.Background(), types.RoadmapKey("guild-1", "backend"))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Tasks) != 0 {
		t.Errorf("tasks remaining = %+v", r.Tasks)
	}
}

func TestEmptyRoadmapRequiresBothCredentials(t *testing.T) {
	deps, store, gw := testDeps()
	admin := event("U1", nil, true)
	run(t, deps, createCommand, admin, "backend", "role:<@&R1>")
	run(t, deps, addTaskCommand, admin, "backend", "1", "Git", "Learn", "branching")
	saves := store.saveCalls

	// Manage-roles without the roadmap role is denied.
	reply := run(t, deps, emptyRoadmapCommand, admin, "backend")
	if reply.Embed.Color != types.ColorRed {
		t.Fatalf("expected denial, got %+v", reply.Embed)
	}

	// The roadmap role without manage-roles never reaches the prompt.
	holder := event("U2", []string{"R1"}, false)
	reply = run(t, deps, emptyRoadmapCommand, holder, "backend")
	if reply.Embed.Color != types.ColorRed {
		t.Fatalf("expected denial, got %+v", reply.Embed)
	}

	if store.saveCalls != saves || len(gw.sent) != 0 {
		t.Error("denied call must not prompt or write")
	}
}
