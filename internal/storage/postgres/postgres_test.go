//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bhanmrinal/cf-project/internal/apperr"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/resume"
	"github.com/bhanmrinal/cf-project/internal/versions"
)

func startPostgres(t *testing.T) *DB {
	t.Helper()
	t.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "careerflow",
				"POSTGRES_PASSWORD": "careerflow",
				"POSTGRES_DB":       "careerflow",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://careerflow:careerflow@%s:%s/careerflow?sslmode=disable", host, port.Port())
	db, err := Connect(ctx, Config{DSN: dsn, Migrate: true}, nil)
	require.NoError(t, err, "connect")
	t.Cleanup(db.Close)

	return db
}

func summary(text string) resume.Content {
	return resume.Content{Sections: []resume.Section{
		{Type: resume.SectionSummary, Title: "Summary", Lines: []string{text}},
	}}
}

func TestPostgres(t *testing.T) {
	db := startPostgres(t)

	t.Run("conversations", func(t *testing.T) {
		ctx := context.Background()
		store := db.Conversations()

		require.NoError(t, store.Create(ctx, conversation.Conversation{ID: "c1", UserID: "alice"}))

		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.ErrorIs(t, store.SetResume(ctx, "missing", "r1"), apperr.ErrNotFound)
		assert.ErrorIs(t, store.AppendTurn(ctx, "missing", conversation.Turn{ID: "x"}), apperr.ErrNotFound)

		require.NoError(t, store.SetResume(ctx, "c1", "r1"))
		cc := conversation.Context{TargetCompany: "Google", TargetLanguage: "spanish"}
		require.NoError(t, store.UpdateContext(ctx, "c1", cc))

		got, err := store.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
		assert.Equal(t, "r1", got.ResumeID)
		assert.Equal(t, cc, got.Context)

		seq := 1
		for i := range 4 {
			turn := conversation.Turn{
				ID:      fmt.Sprintf("t%d", i),
				Sender:  "alice",
				Message: fmt.Sprintf("message %d", i),
				Reply:   "ok",
				Intent:  "general_chat",
			}
			if i == 3 {
				turn.VersionSeq = &seq
				turn.Payload = map[string]any{"target_company": "Google"}
			}
			require.NoError(t, store.AppendTurn(ctx, "c1", turn))
		}

		recent, err := store.RecentTurns(ctx, "c1", 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, "message 1", recent[0].Message)
		assert.Equal(t, "message 3", recent[2].Message)
		assert.Nil(t, recent[0].VersionSeq)
		require.NotNil(t, recent[2].VersionSeq)
		assert.Equal(t, 1, *recent[2].VersionSeq)
		assert.Equal(t, "Google", recent[2].Payload["target_company"])

		_, err = store.RecentTurns(ctx, "missing", 3)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("versions", func(t *testing.T) {
		ctx := context.Background()
		store := versions.New(db.Versions(), nil)

		_, err := store.Current(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = store.Create(ctx, "r1", summary("original"), "uploaded")
		require.NoError(t, err)
		v1, err := store.Record(ctx, "r1", summary("for Google"), "optimized for Google", "company_research")
		require.NoError(t, err)
		assert.Equal(t, 1, v1.Seq)

		_, err = store.Revert(ctx, "r1", 0)
		require.NoError(t, err)
		v2, err := store.Record(ctx, "r1", summary("for Stripe"), "optimized for Stripe", "company_research")
		require.NoError(t, err)
		assert.Equal(t, 2, v2.Seq)

		history, current, err := store.History(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 0, history[0].Seq)
		assert.Equal(t, 2, history[1].Seq)
		assert.Equal(t, 2, current)
		assert.Equal(t, "company_research", history[1].Agent)
		assert.Equal(t, summary("for Stripe").Text(), history[1].Content.Text())

		_, err = store.Revert(ctx, "r1", 1)
		assert.ErrorIs(t, err, apperr.ErrInvalidVersion)
	})

	t.Run("stored versions are not rewritten", func(t *testing.T) {
		ctx := context.Background()
		backend := db.Versions()
		store := versions.New(backend, nil)

		_, err := store.Create(ctx, "r2", summary("original"), "uploaded")
		require.NoError(t, err)
		_, err = store.Record(ctx, "r2", summary("edited"), "edited", "general_chat")
		require.NoError(t, err)

		h, err := backend.Load(ctx, "r2")
		require.NoError(t, err)
		h.Versions[0].Content = summary("tampered")
		h.Versions[0].Label = "tampered"
		require.NoError(t, backend.Save(ctx, h))

		v0, err := store.Get(ctx, "r2", 0)
		require.NoError(t, err)
		assert.Equal(t, "uploaded", v0.Label)
		assert.Equal(t, summary("original").Text(), v0.Content.Text())
	})

	t.Run("create replaces a history", func(t *testing.T) {
		ctx := context.Background()
		store := versions.New(db.Versions(), nil)

		_, err := store.Create(ctx, "r3", summary("first"), "uploaded")
		require.NoError(t, err)
		_, err = store.Record(ctx, "r3", summary("edited"), "edited", "general_chat")
		require.NoError(t, err)

		_, err = store.Create(ctx, "r3", summary("second"), "uploaded again")
		require.NoError(t, err)

		history, current, err := store.History(ctx, "r3")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 0, current)
		assert.Equal(t, "uploaded again", history[0].Label)
		assert.Equal(t, summary("second").Text(), history[0].Content.Text())
	})
}
