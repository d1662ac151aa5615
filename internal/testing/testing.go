// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// FakeCorrectionAPI is an in-memory test double for services.CorrectionAPI and services.Moderator.
//
// Missing entries answer [shared.ErrNotFound]. Errors overrides the result of an operation by name ("FindOne", "Compare", ...).
// When Gate is non-nil every call blocks until Gate is closed or the caller's context ends.
type FakeCorrectionAPI struct {
	Corrections map[int]*models.Correction
	Revisions   map[int][]models.CorrectionRevisionSummary
	Diffs       map[int]*models.CorrectionDiff
	Comparisons map[[2]int]*models.CorrectionDiff
	Histories   map[string][]models.CorrectionHistoryItem
	Pending     map[string]*int
	Errors      map[string]error
	Gate        chan struct{}

	mu      sync.Mutex
	calls   map[string]int
	handled []HandledCall
}

// HandledCall records a moderation action sent to the fake.
type HandledCall struct {
	ID     int
	Method models.HandleMethod
}

// EntityKey is the Histories / Pending map key for an entity, e.g. "artist/24".
func EntityKey(entityType models.EntityType, id int) string {
	return fmt.Sprintf("%s/%d", entityType.PathSegment(), id)
}

func (f *FakeCorrectionAPI) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	err := f.Errors[op]
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Calls returns how many times op was invoked.
func (f *FakeCorrectionAPI) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (f *FakeCorrectionAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Handled returns the moderation actions received so far.
func (f *FakeCorrectionAPI) Handled() []HandledCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]HandledCall(nil), f.handled...)
}

func (f *FakeCorrectionAPI) FindOne(ctx context.Context, id int) (*models.Correction, error) {
	if err := f.enter(ctx, "FindOne"); err != nil {
		return nil, err
	}
	if c, ok := f.Corrections[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: correction %d", shared.ErrNotFound, id)
}

func (f *FakeCorrectionAPI) FindRevisions(ctx context.Context, id int) ([]models.CorrectionRevisionSummary, error) {
	if err := f.enter(ctx, "FindRevisions"); err != nil {
		return nil, err
	}
	if r, ok := f.Revisions[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: revisions of %d", shared.ErrNotFound, id)
}

func (f *FakeCorrectionAPI) FindDiff(ctx context.Context, id int) (*models.CorrectionDiff, error) {
	if err := f.enter(ctx, "FindDiff"); err != nil {
		return nil, err
	}
	if d, ok := f.Diffs[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: diff of %d", shared.ErrNotFound, id)
}

func (f *FakeCorrectionAPI) Compare(ctx context.Context, base, target int) (*models.CorrectionDiff, error) {
	if err := f.enter(ctx, "Compare"); err != nil {
		return nil, err
	}
	if d, ok := f.Comparisons[[2]int{base, target}]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: compare %d..%d", shared.ErrNotFound, base, target)
}

func (f *FakeCorrectionAPI) FindHistory(ctx context.Context, entityType models.EntityType, id int) ([]models.CorrectionHistoryItem, error) {
	if err := f.enter(ctx, "FindHistory"); err != nil {
		return nil, err
	}
	if h, ok := f.Histories[EntityKey(entityType, id)]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: history of %s", shared.ErrNotFound, EntityKey(entityType, id))
}

func (f *FakeCorrectionAPI) FindPending(ctx context.Context, entityType models.EntityType, id int) (*int, error) {
	if err := f.enter(ctx, "FindPending"); err != nil {
		return nil, err
	}
	return f.Pending[EntityKey(entityType, id)], nil
}

func (f *FakeCorrectionAPI) Handle(ctx context.Context, id int, method models.HandleMethod) error {
	if err := f.enter(ctx, "Handle"); err != nil {
		return err
	}
	f.mu.Lock()
	f.handled = append(f.handled, HandledCall{ID: id, Method: method})
	f.mu.Unlock()
	return nil
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}

// NewArtistFixture returns a fake populated with pending correction 104 on artist 24,
// its approved predecessors 98 and 90, the baseline diff and both compare diffs.
func NewArtistFixture() *FakeCorrectionAPI {
	kaze := models.CorrectionUserSummary{ID: 7, Name: "Kaze Ito"}
	rin := models.CorrectionUserSummary{ID: 12, Name: "Rin Hoshino"}
	mika := models.CorrectionUserSummary{ID: 19, Name: "Mika Arisato"}

	name := models.CorrectionDiffEntry{Path: "name", Before: models.Ptr("ZUN"), After: models.Ptr("ZUN (Team Shanghai Alice)")}
	localized := models.CorrectionDiffEntry{Path: "localized_names[ja]", Before: models.Ptr("ZUN"), After: models.Ptr("上海アリス幻樂団")}
	links := models.CorrectionDiffEntry{Path: "links", Before: models.Ptr(`["https://example.com"]`), After: models.Ptr(`["https://example.com", "https://twitter.com/placeholder"]`)}
	image := models.CorrectionDiffEntry{Path: "profile_image_url", Before: models.Ptr("/avatar.png"), After: models.Ptr("/artist/zun.png")}

	diff := func(base, baseHistory *int, changes ...models.CorrectionDiffEntry) *models.CorrectionDiff {
		return &models.CorrectionDiff{
			EntityID: 24, EntityType: models.EntityArtist,
			BaseCorrectionID: base, BaseHistoryID: baseHistory,
			TargetCorrectionID: 104, TargetHistoryID: 5012,
			Changes: changes,
		}
	}

	return &FakeCorrectionAPI{
		Corrections: map[int]*models.Correction{
			104: {ID: 104, Status: models.StatusPending, Type: models.TypeUpdate, EntityType: models.EntityArtist, EntityID: 24, CreatedAt: ts("2025-12-29T09:12:00+08:00")},
			98:  {ID: 98, Status: models.StatusApproved, Type: models.TypeUpdate, EntityType: models.EntityArtist, EntityID: 24, CreatedAt: ts("2025-12-12T16:45:00+08:00"), HandledAt: tsPtr("2025-12-14T11:03:00+08:00")},
			90:  {ID: 90, Status: models.StatusApproved, Type: models.TypeCreate, EntityType: models.EntityArtist, EntityID: 24, CreatedAt: ts("2025-11-02T10:18:00+08:00"), HandledAt: tsPtr("2025-11-05T08:30:00+08:00")},
		},
		Revisions: map[int][]models.CorrectionRevisionSummary{
			104: {
				{EntityHistoryID: 5012, Author: kaze, Description: "Added missing kana name and fixed typo in bio."},
				{EntityHistoryID: 5011, Author: kaze, Description: "Synced website links with official sources."},
				{EntityHistoryID: 5007, Author: rin, Description: "Updated profile image and cleaned aliases."},
			},
		},
		Diffs: map[int]*models.CorrectionDiff{
			104: diff(models.Ptr(98), models.Ptr(5011), name, localized, links, image),
		},
		Comparisons: map[[2]int]*models.CorrectionDiff{
			{98, 104}: diff(models.Ptr(98), models.Ptr(5011), name, localized),
			{90, 104}: diff(models.Ptr(90), models.Ptr(5002),
				models.CorrectionDiffEntry{Path: "name", After: models.Ptr("ZUN (Team Shanghai Alice)")},
				models.CorrectionDiffEntry{Path: "profile_image_url", After: models.Ptr("/artist/zun.png")},
				models.CorrectionDiffEntry{Path: "links", After: models.Ptr(`["https://example.com", "https://twitter.com/placeholder"]`)},
			),
		},
		Histories: map[string][]models.CorrectionHistoryItem{
			"artist/24": {
				{ID: 104, Type: models.TypeUpdate, CreatedAt: ts("2025-12-29T09:12:00+08:00"), Description: "Refine localized names and add new aliases.", Author: kaze},
				{ID: 98, Type: models.TypeUpdate, CreatedAt: ts("2025-12-12T16:45:00+08:00"), HandledAt: tsPtr("2025-12-14T11:03:00+08:00"), Description: "Normalize artist links and update profile image.", Author: rin},
				{ID: 90, Type: models.TypeCreate, CreatedAt: ts("2025-11-02T10:18:00+08:00"), HandledAt: tsPtr("2025-11-05T08:30:00+08:00"), Description: "Initial artist entry with basic metadata.", Author: mika},
			},
		},
		Pending: map[string]*int{"artist/24": models.Ptr(104)},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
