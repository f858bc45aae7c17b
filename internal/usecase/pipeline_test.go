package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/gateway"
)

// stubSource replays a fixed list of pages, failing with err once they run out.
type stubSource struct {
	pages   []*gateway.Page
	err     error
	cursors []*string
}

func (s *stubSource) FetchPage(_ context.Context, cursor *string) (*gateway.Page, error) {
	s.cursors = append(s.cursors, cursor)
	i := len(s.cursors) - 1
	if i >= len(s.pages) {
		return nil, s.err
	}
	return s.pages[i], nil
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Write(ctx context.Context, snap *domain.Snapshot) error {
	return m.Called(ctx, snap).Error(0)
}

type mockPreview struct {
	mock.Mock
}

func (m *mockPreview) Render(ctx context.Context, counts domain.StatusCounts, lastUpdated string) error {
	return m.Called(ctx, counts, lastUpdated).Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, report *domain.RunReport) error {
	return m.Called(ctx, report).Error(0)
}

// Capture instant is 2025-12-01 09:00 UTC, i.e. 18:00 in Tokyo.
func newTestPipeline(t *testing.T, source gateway.PageSource, writer SnapshotWriter, opts ...Option) *Pipeline {
	t.Helper()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	base := []Option{
		WithClock(func() time.Time { return baseTime }),
		WithTimestampFormat(tokyo, DefaultTimeLayout),
		WithSubject("octocat"),
	}
	return NewPipeline(source, NewNormalizer(testAvatarTemplate), writer, zap.NewNop().Sugar(), append(base, opts...)...)
}

func TestPipeline_Run_MergedOpenAndNull(t *testing.T) {
	merged := rawPR("PR_M", 1, "MERGED", "acme", baseTime.Add(-time.Hour))
	open := rawPR("PR_O", 2, "OPEN", "acme", baseTime.Add(-2*time.Hour))
	source := &stubSource{pages: []*gateway.Page{{Records: []*gateway.RawPullRequest{merged, open, nil}}}}

	writer := new(mockWriter)
	writer.On("Write", mock.Anything, mock.AnythingOfType("*domain.Snapshot")).Return(nil)

	snap, report, err := newTestPipeline(t, source, writer).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, snap.PullRequests, 2)
	assert.Equal(t, "PR_M", snap.PullRequests[0].ID)
	assert.Equal(t, domain.StatusMerged, snap.PullRequests[0].State)
	assert.Equal(t, "2025-12-01 18:00:00", snap.LastUpdated)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, report.Fetched, len(snap.PullRequests)+report.Skipped)
	assert.Equal(t, domain.RunSucceeded, report.Status)
	assert.Equal(t, "octocat", report.Subject)
	assert.NotEmpty(t, report.ID)
	for _, p := range snap.PullRequests {
		assert.NoError(t, p.CheckLifecycle())
	}
	writer.AssertNumberOfCalls(t, "Write", 1)
}

func TestPipeline_Run_EmptySource(t *testing.T) {
	source := &stubSource{pages: []*gateway.Page{{HasNextPage: false}}}
	writer := new(mockWriter)
	writer.On("Write", mock.Anything, mock.Anything).Return(nil)

	snap, report, err := newTestPipeline(t, source, writer).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.PullRequests)
	assert.NotNil(t, snap.PullRequests)
	assert.Empty(t, snap.Organizations)
	assert.NotNil(t, snap.Organizations)
	assert.Equal(t, "2025-12-01 18:00:00", snap.LastUpdated)
	assert.Zero(t, report.Fetched)
	writer.AssertCalled(t, "Write", mock.Anything, snap)
}

func TestPipeline_Run_ThreadsCursorsAndCountsDefaults(t *testing.T) {
	unknown := rawPR("PR_U", 3, "SOMETHING_NEW", "beta", baseTime.Add(-3*time.Hour))
	missing := rawPR("PR_X", 4, "OPEN", "beta", baseTime)
	missing.Additions = nil
	source := &stubSource{pages: []*gateway.Page{
		{Records: []*gateway.RawPullRequest{rawPR("PR_1", 1, "OPEN", "acme", baseTime)}, HasNextPage: true, EndCursor: "c1"},
		{Records: []*gateway.RawPullRequest{unknown, missing}, HasNextPage: true, EndCursor: "c2"},
		{Records: []*gateway.RawPullRequest{rawPR("PR_2", 2, "CLOSED", "acme", baseTime.Add(-time.Minute))}},
	}}
	writer := new(mockWriter)
	writer.On("Write", mock.Anything, mock.Anything).Return(nil)

	snap, report, err := newTestPipeline(t, source, writer).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, source.cursors, 3)
	assert.Nil(t, source.cursors[0])
	assert.Equal(t, "c1", *source.cursors[1])
	assert.Equal(t, "c2", *source.cursors[2])

	assert.Equal(t, []string{"PR_1", "PR_2", "PR_U"}, ids(snap.PullRequests))
	assert.Equal(t, 4, report.Fetched)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.DefaultedStatus)
	assert.Equal(t, domain.StatusCounts{Total: 3, Open: 2, Closed: 1}, report.Counts)
	assert.Equal(t, 2, report.Organizations)
}

func TestPipeline_Run_FetchFailureWritesNothing(t *testing.T) {
	source := &stubSource{
		pages: []*gateway.Page{{Records: []*gateway.RawPullRequest{rawPR("PR_1", 1, "OPEN", "acme", baseTime)}, HasNextPage: true, EndCursor: "c1"}},
		err:   errors.New("401 Unauthorized"),
	}
	writer := new(mockWriter)
	recorder := new(mockRecorder)
	recorder.On("Record", mock.Anything, mock.Anything).Return(nil)

	snap, report, err := newTestPipeline(t, source, writer, WithRecorder(recorder)).Run(context.Background())

	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFetch, stageErr.Stage)
	assert.Contains(t, err.Error(), "401 Unauthorized")
	assert.Nil(t, snap)
	assert.Equal(t, domain.RunFailed, report.Status)
	assert.Equal(t, StageFetch, report.Stage)
	writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	recorder.AssertCalled(t, "Record", mock.Anything, report)
}

func TestPipeline_Run_WriteFailureIsFatal(t *testing.T) {
	source := &stubSource{pages: []*gateway.Page{{}}}
	writer := new(mockWriter)
	writer.On("Write", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))
	preview := new(mockPreview)

	_, report, err := newTestPipeline(t, source, writer, WithPreview(preview)).Run(context.Background())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageWrite, stageErr.Stage)
	assert.Equal(t, StageWrite, report.Stage)
	preview.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_PreviewAndHistoryFailuresAreRecoverable(t *testing.T) {
	source := &stubSource{pages: []*gateway.Page{{Records: []*gateway.RawPullRequest{rawPR("PR_1", 1, "OPEN", "acme", baseTime)}}}}
	writer := new(mockWriter)
	writer.On("Write", mock.Anything, mock.Anything).Return(nil)
	preview := new(mockPreview)
	preview.On("Render", mock.Anything, domain.StatusCounts{Total: 1, Open: 1}, "2025-12-01 18:00:00").Return(errors.New("no font"))
	recorder := new(mockRecorder)
	recorder.On("Record", mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	snap, report, err := newTestPipeline(t, source, writer, WithPreview(preview), WithRecorder(recorder)).Run(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.True(t, report.PreviewFailed)
	assert.Equal(t, domain.RunSucceeded, report.Status)
	preview.AssertExpectations(t)
	recorder.AssertExpectations(t)
}
