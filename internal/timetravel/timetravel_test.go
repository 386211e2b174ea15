package timetravel

import (
	"context"
	"testing"
	"time"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/database"
	apperr "sqlferry/cli/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2023, 7, 20, 12, 0, 0, 0, time.UTC)

func TestConvertTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{name: "epoch seconds", in: "1689355284", want: "2023-07-14T17:21:24.000Z"},
		{name: "epoch millis", in: "1689355284123", want: "2023-07-14T17:21:24.123Z"},
		{name: "iso", in: "2023-07-14T17:21:24Z", want: "2023-07-14T17:21:24.000Z"},
		{name: "iso offset", in: "2023-07-14T19:21:24+02:00", want: "2023-07-14T17:21:24.000Z"},
		{name: "date only", in: "2023-07-01", want: "2023-07-01T00:00:00.000Z"},
		{name: "garbage", in: "yesterday", wantErr: "Invalid timestamp 'yesterday'"},
		{name: "too old", in: "1600000000", wantErr: "Please provide a timestamp within the last 30 days"},
		{name: "future", in: "2023-07-21T00:00:00Z", wantErr: "Please provide a timestamp in the past"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertTimestamp(tt.in, now)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.UserError))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidTimestampShowsExample(t *testing.T) {
	_, err := ParseTimestamp("nope", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2023-07-20T12:00:00.000Z")
}

func TestWindowBoundaries(t *testing.T) {
	assert.NoError(t, CheckWindow(now, now))
	assert.NoError(t, CheckWindow(now.Add(-Window), now))
	assert.Error(t, CheckWindow(now.Add(-Window-time.Millisecond), now))
	assert.Error(t, CheckWindow(now.Add(time.Millisecond), now))
}

type fakeAPI struct {
	version   string
	bookmark  string
	infoCalls int
	bmCalls   []string
	restored  []string
}

func (f *fakeAPI) DatabaseInfo(context.Context, database.Ref) (backend.DatabaseInfo, error) {
	f.infoCalls++
	return backend.DatabaseInfo{Version: f.version}, nil
}

func (f *fakeAPI) Bookmark(_ context.Context, _ database.Ref, ts string) (string, error) {
	f.bmCalls = append(f.bmCalls, ts)
	return f.bookmark, nil
}

func (f *fakeAPI) Restore(_ context.Context, _ database.Ref, bm string) (backend.RestoreResponse, error) {
	f.restored = append(f.restored, bm)
	return backend.RestoreResponse{Bookmark: "new-" + bm, PreviousBookmark: "prev"}, nil
}

func newResolver(api API) *Resolver {
	return NewResolver(api, Options{Now: func() time.Time { return now }, Guard: &database.Guard{}})
}

var db = database.Ref{ID: uuid.MustParse("44444444-4444-4444-8444-444444444444"), Name: "main"}

func TestBookmarkCurrentAndAtTime(t *testing.T) {
	api := &fakeAPI{version: "production", bookmark: "00000001-0000"}
	r := newResolver(api)

	bm, err := r.Bookmark(context.Background(), db, "")
	require.NoError(t, err)
	assert.Equal(t, "00000001-0000", bm)

	_, err = r.Bookmark(context.Background(), db, "1689355284")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "2023-07-14T17:21:24.000Z"}, api.bmCalls)
}

func TestAlphaDatabasesRejected(t *testing.T) {
	api := &fakeAPI{version: database.GenerationAlpha}
	r := newResolver(api)

	_, err := r.Bookmark(context.Background(), db, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.UserError))
	assert.Empty(t, api.bmCalls)

	known := db
	known.Version = database.GenerationAlpha
	_, err = r.Restore(context.Background(), known, RestoreRequest{Bookmark: "b"})
	require.Error(t, err)
	assert.Empty(t, api.restored)
	assert.Equal(t, 1, api.infoCalls)
}

func TestRestoreRequiresExactlyOneTarget(t *testing.T) {
	tests := []struct {
		name string
		req  RestoreRequest
		want string
	}{
		{name: "both", req: RestoreRequest{Timestamp: "1689355284", Bookmark: "b"}, want: "not both"},
		{name: "neither", req: RestoreRequest{}, want: "Please provide a timestamp or a bookmark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			_, err := newResolver(api).Restore(context.Background(), db, tt.req)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.UserError))
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, api.infoCalls)
			assert.Empty(t, api.bmCalls)
			assert.Empty(t, api.restored)
		})
	}
}

func TestRestoreByTimestamp(t *testing.T) {
	api := &fakeAPI{version: "production", bookmark: "bm-1"}
	var states []State
	r := NewResolver(api, Options{
		Now:     func() time.Time { return now },
		Guard:   &database.Guard{},
		OnState: func(s State) { states = append(states, s) },
	})

	res, err := r.Restore(context.Background(), db, RestoreRequest{Timestamp: "1689355284"})
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{Bookmark: "new-bm-1", PreviousBookmark: "prev"}, res)
	assert.Equal(t, []string{"2023-07-14T17:21:24.000Z"}, api.bmCalls)
	assert.Equal(t, []State{Requested, Restoring, Done}, states)
}

func TestRestoreOutOfWindowMakesNoCalls(t *testing.T) {
	api := &fakeAPI{version: "production"}
	_, err := newResolver(api).Restore(context.Background(), db, RestoreRequest{Timestamp: "1500000000"})
	require.Error(t, err)
	assert.Zero(t, api.infoCalls)
	assert.Empty(t, api.restored)
}

func TestRestoreByBookmarkSkipsResolution(t *testing.T) {
	api := &fakeAPI{version: "production"}
	res, err := newResolver(api).Restore(context.Background(), db, RestoreRequest{Bookmark: "given"})
	require.NoError(t, err)
	assert.Empty(t, api.bmCalls)
	assert.Equal(t, []string{"given"}, api.restored)
	assert.Equal(t, "new-given", res.Bookmark)
}

func TestRestoreRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RestoreRequest
		wantErr string
	}{
		{"bookmark only", RestoreRequest{Bookmark: "00000001-00000002"}, ""},
		{"timestamp only", RestoreRequest{Timestamp: "2023-07-19T00:00:00Z"}, ""},
		{"both", RestoreRequest{Timestamp: "1689355284", Bookmark: "b"}, "not both"},
		{"neither", RestoreRequest{}, "Please provide a timestamp or a bookmark"},
		{"future", RestoreRequest{Timestamp: "2023-07-21T00:00:00Z"}, "in the past"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.UserError))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
