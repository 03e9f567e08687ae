package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-oracle/api/internal/domain"
)

// fakePool records executed statements and plays back canned results.
type fakePool struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error

	rowDoc []byte
	rowErr error

	queryDocs [][]byte
	queryErr  error
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return f.execTag, f.execErr
}

func (f *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{doc: f.rowDoc, err: f.rowErr}
}

func (f *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{docs: f.queryDocs}, nil
}

type fakeRow struct {
	doc []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.doc
	return nil
}

type fakeRows struct {
	docs [][]byte
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.docs) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*[]byte)) = r.docs[r.idx-1]
	return nil
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func testSession() domain.Session {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Session{
		ID:     "sid-1",
		UserID: "user-1",
		Title:  "Backend Engineer at Acme",
		Metadata: domain.SessionMetadata{
			CreatedAt: now,
			UpdatedAt: now,
			Version:   "1.0",
		},
	}
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	pool := &fakePool{}
	require.NoError(t, EnsureSchema(context.Background(), pool))
	require.Len(t, pool.execSQL, 1)
	assert.Equal(t, Schema, pool.execSQL[0])

	pool = &fakePool{execErr: errors.New("boom")}
	require.Error(t, EnsureSchema(context.Background(), pool))
}

func TestSessionRepoCreate(t *testing.T) {
	t.Parallel()

	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := NewSessionRepo(pool)

	sess := testSession()
	id, err := repo.Create(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, id)

	require.Len(t, pool.execArgs, 1)
	args := pool.execArgs[0]
	require.Len(t, args, 5)
	assert.Equal(t, sess.ID, args[0])
	assert.Equal(t, sess.UserID, args[1])

	// the stored document is the full session
	var stored domain.Session
	require.NoError(t, json.Unmarshal(args[2].([]byte), &stored))
	assert.Equal(t, sess, stored)
}

func TestSessionRepoGet(t *testing.T) {
	t.Parallel()

	sess := testSession()
	doc, err := json.Marshal(sess)
	require.NoError(t, err)

	repo := NewSessionRepo(&fakePool{rowDoc: doc})
	got, err := repo.Get(context.Background(), "user-1", "sid-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestSessionRepoGet_NoRowsIsNotFound(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(&fakePool{rowErr: pgx.ErrNoRows})
	_, err := repo.Get(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepoList(t *testing.T) {
	t.Parallel()

	a, err := json.Marshal(testSession())
	require.NoError(t, err)
	b := testSession()
	b.ID = "sid-2"
	bdoc, err := json.Marshal(b)
	require.NoError(t, err)

	repo := NewSessionRepo(&fakePool{queryDocs: [][]byte{a, bdoc}})
	list, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sid-1", list[0].ID)
	assert.Equal(t, "sid-2", list[1].ID)
}

func TestSessionRepoUpdate_ZeroRowsIsNotFound(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(&fakePool{execTag: pgconn.NewCommandTag("UPDATE 0")})
	err := repo.Update(context.Background(), testSession())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo = NewSessionRepo(&fakePool{execTag: pgconn.NewCommandTag("UPDATE 1")})
	require.NoError(t, repo.Update(context.Background(), testSession()))
}

func TestSessionRepoDelete_ZeroRowsIsNotFound(t *testing.T) {
	t.Parallel()

	repo := NewSessionRepo(&fakePool{execTag: pgconn.NewCommandTag("DELETE 0")})
	err := repo.Delete(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo = NewSessionRepo(&fakePool{execTag: pgconn.NewCommandTag("DELETE 1")})
	require.NoError(t, repo.Delete(context.Background(), "user-1", "sid-1"))
}
