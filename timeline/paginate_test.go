package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadWithTwoCursors() *fakeFetcher {
	return &fakeFetcher{pages: map[string][]byte{
		"": entries(
			singleGroup("A1", "alice"),
			moduleGroup("A2", tw("A2", "alice"), tw("A3", "alice"), cursorContent("c1")),
			moduleGroup("B", tw("B", "bob")),
		),
		"c1": entries(pageItem("A3", "alice"), pageItem("A4", "alice"), pageItem("A5", "alice"), pageCursor("c2")),
		"c2": entries(pageItem("A5", "alice"), pageItem("A6", "alice")),
	}}
}

func TestThread_FollowsCursors(t *testing.T) {
	f := threadWithTwoCursors()
	paced := 0
	r := New(f, WithPacer(func(context.Context) error { paced++; return nil }))

	got, err := r.Thread(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5", "A6"}, ids(got))

	seen := map[string]bool{}
	for _, tweet := range got {
		assert.False(t, tweet.IsSentinel())
		assert.False(t, seen[tweet.ID], "duplicate %s", tweet.ID)
		seen[tweet.ID] = true
	}

	require.Len(t, f.calls, 3)
	assert.Equal(t, []string{"", "c1", "c2"}, []string{f.calls[0].cursor, f.calls[1].cursor, f.calls[2].cursor})
	for _, c := range f.calls {
		assert.Equal(t, "A1", c.focalID)
		assert.False(t, c.includeRecommended)
	}
	assert.Equal(t, 2, paced)
}

func TestThread_FetchErrorDiscardsPartialResult(t *testing.T) {
	f := threadWithTwoCursors()
	boom := errors.New("connection reset")
	f.err = map[string]error{"c2": boom}

	got, err := New(f, WithPacer(noPace)).Thread(context.Background(), "A1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Nil(t, got)
}

func TestThread_ParseErrorInPage(t *testing.T) {
	f := threadWithTwoCursors()
	f.pages["c1"] = entries(`{"entryId":"x","item":{"itemContent":{"itemType":"TimelineTimelineLabel"}}}`)

	_, err := New(f, WithPacer(noPace)).Thread(context.Background(), "A1")
	var ce *ClassificationError
	require.True(t, errors.As(err, &ce))
}

func TestThread_RepeatedCursorStops(t *testing.T) {
	f := threadWithTwoCursors()
	f.pages["c1"] = entries(pageItem("A4", "alice"), pageCursor("c1"))

	got, err := New(f, WithPacer(noPace)).Thread(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4"}, ids(got))
	assert.Len(t, f.calls, 2)
}

func TestThread_MaxPages(t *testing.T) {
	f := threadWithTwoCursors()

	got, err := New(f, WithPacer(noPace), WithMaxPages(1)).Thread(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5"}, ids(got))
	assert.Len(t, f.calls, 2)
}

func TestThread_EmptyPageEnds(t *testing.T) {
	f := threadWithTwoCursors()
	f.pages["c1"] = entries()

	got, err := New(f, WithPacer(noPace)).Thread(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3"}, ids(got))
}

func TestThread_PacerCancellation(t *testing.T) {
	f := threadWithTwoCursors()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f, WithPageDelay(time.Hour)).Thread(ctx, "A1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.calls, 1)
}

func TestThread_TombstonesKept(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{
		"": entries(
			singleGroup("A1", "alice"),
			moduleGroup("A2", tw("A2", "alice"), cursorContent("c1")),
		),
		"c1": entries(
			`{"entryId":"t1","item":{"itemContent":`+tombstoneContent("This Post is unavailable. Learn more")+`}}`,
			`{"entryId":"t2","item":{"itemContent":`+tombstoneContent("This Post is unavailable. Learn more")+`}}`,
			pageItem("A3", "alice"),
		),
	}}

	got, err := New(f, WithPacer(noPace)).Thread(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "", "", "A3"}, ids(got))
	assert.Equal(t, "This Post is unavailable.", got[2].Text)
}

func TestContinue(t *testing.T) {
	f := threadWithTwoCursors()

	got, err := New(f, WithPacer(noPace)).Continue(context.Background(), "A1", "c1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "A4", "A5", "A6"}, ids(got))
	assert.Equal(t, "c1", f.calls[0].cursor)
}

func TestContinue_EmptyCursorResolvesThread(t *testing.T) {
	f := threadWithTwoCursors()

	got, err := New(f, WithPacer(noPace)).Continue(context.Background(), "A1", "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5", "A6"}, ids(got))
}

func TestRecommended(t *testing.T) {
	f := &fakeFetcher{pages: map[string][]byte{
		"": entries(
			singleGroup("A1", "alice"),
			moduleGroup("B", tw("B", "bob"), cursorContent("more")),
			cursorGroup("bottom"),
			moduleGroup("R1", tw("R1", "rita"), tw("A1", "alice"), tw("R2", "rob")),
		),
	}}

	got, err := New(f, WithPacer(noPace)).Continue(context.Background(), "A1", "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B", "R1", "R2"}, ids(got))
	require.Len(t, f.calls, 1)
	assert.True(t, f.calls[0].includeRecommended)
}

func TestFlattenPage_StopsAtCursor(t *testing.T) {
	got, err := FlattenPage(entries(pageItem("1", "a"), pageCursor("c"), pageItem("2", "a")))
	require.NoError(t, err)
	require.Equal(t, []string{"1", SentinelID}, ids(got))
	assert.Equal(t, "c", got[1].Cursor())
}
