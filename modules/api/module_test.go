package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startApplication runs auth, task, activity and api inside a mono application
// with each store on its own SQLite file.
func startApplication(t *testing.T) (*APIModule, *testEnv) {
	t.Helper()

	dir := t.TempDir()
	sqlite := func(name string) config.StoreConfig {
		return config.StoreConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(dir, name),
		}
	}

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, err)

	apiModule := NewModule(0, nil)
	require.NoError(t, app.Register(auth.NewModule(sqlite("auth.db"), config.JWTConfig{
		Secret: "test-secret",
		Issuer: "task-tracker",
	}, nil)))
	require.NoError(t, app.Register(task.NewModule(sqlite("tasks.db"), nil)))
	require.NoError(t, app.Register(activity.NewModule(nil)))
	require.NoError(t, app.Register(apiModule))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, apiModule.app)
	return apiModule, &testEnv{app: apiModule.app}
}

func TestApplication_EndToEnd(t *testing.T) {
	_, env := startApplication(t)
	credentials := fiber.Map{"email": "alice@x.io", "password": "secret123"}

	resp := env.do(t, "POST", "/auth/register", "", credentials)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, "POST", "/auth/register", "", credentials)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", decodeError(t, resp.Body).Message)

	resp = env.do(t, "POST", "/auth/login", "", fiber.Map{"email": "alice@x.io", "password": "wrong-pass"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decodeError(t, resp.Body).Message)

	resp = env.do(t, "POST", "/auth/login", "", credentials)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	alice := login.Token
	bob := env.login(t, "bob@x.io")

	resp = env.do(t, "GET", "/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No token provided", decodeError(t, resp.Body).Message)

	resp = env.do(t, "GET", "/tasks", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Failed to authenticate token", decodeError(t, resp.Body).Message)

	resp = env.do(t, "POST", "/tasks", bob, taskBody("bob@x.io", "bob's task", "Work", false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, "POST", "/tasks", alice, taskBody("alice@x.io", "write report", "Work", false))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var inserted domain.InsertResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&inserted))
	assert.True(t, inserted.Acknowledged)
	require.True(t, domain.ValidID(inserted.InsertedID))

	resp = env.do(t, "GET", "/tasks", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"write report"}, taskNames(decodeTasks(t, resp)))

	resp = env.do(t, "GET", "/tasks/filter?done=false&category=Work", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"write report"}, taskNames(decodeTasks(t, resp)))

	resp = env.do(t, "GET", "/tasks/filter?done=maybe", alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, "POST", "/tasks/mark", alice, fiber.Map{"id": inserted.InsertedID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var marked domain.UpdateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&marked))
	assert.Equal(t, int64(1), marked.MatchedCount)

	resp = env.do(t, "DELETE", "/tasks?id=not-an-id", alice, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid task ID", decodeError(t, resp.Body).Message)

	// Events reach the activity module asynchronously.
	var feed ActivityResponse
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp = env.do(t, "GET", "/activity", alice, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		feed = ActivityResponse{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
		if len(feed.Entries) >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.Len(t, feed.Entries, 2)
	assert.Equal(t, activity.TypeTaskCompleted, feed.Entries[0].Type)
	assert.Equal(t, activity.TypeTaskCreated, feed.Entries[1].Type)
	for _, entry := range feed.Entries {
		assert.Equal(t, inserted.InsertedID, entry.TaskID)
	}
}

func TestApplication_ErrorsCrossServiceBoundary(t *testing.T) {
	m, env := startApplication(t)
	ctx := context.Background()
	env.login(t, "alice@x.io")

	_, err := m.authAdapter.Register(ctx, "alice@x.io", "secret123")
	assert.ErrorIs(t, err, auth.ErrUserExists)

	_, err = m.authAdapter.Login(ctx, "alice@x.io", "wrong-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = m.authAdapter.FindAccount(ctx, "nobody@x.io")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	found, err := m.authAdapter.FindAccount(ctx, "alice@x.io")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.io", found.Email)

	_, err = m.taskAdapter.DeleteTask(ctx, "alice@x.io", "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = m.taskAdapter.FilterTasks(ctx, "alice@x.io", "maybe", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDone)

	draft := &domain.Task{CreatedBy: "bob@x.io", Name: "sneaky", Category: domain.CategoryWork}
	_, err = m.taskAdapter.CreateTask(ctx, "alice@x.io", draft)
	assert.ErrorIs(t, err, task.ErrOwnerMismatch)

	tasks, err := m.taskAdapter.ListTasks(ctx, "alice@x.io")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestApplication_ConcurrentRequests(t *testing.T) {
	_, env := startApplication(t)
	token := env.login(t, "alice@x.io")

	const workers = 20
	body, err := json.Marshal(taskBody("alice@x.io", "parallel", "Work", false))
	require.NoError(t, err)

	codes := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/tasks", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := env.app.Test(req, -1)
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}

	resp := env.do(t, "GET", "/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeTasks(t, resp), workers)
}
