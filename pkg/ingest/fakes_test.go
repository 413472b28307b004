package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/scrape"
)

// fakeWorkRepo implements repositories.WorkRepository with function fields.
type fakeWorkRepo struct {
	searchFunc func(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error)
	createFunc func(ctx context.Context, work *models.Work) error

	searchCalls int
	created     []*models.Work
}

func (f *fakeWorkRepo) SearchByName(ctx context.Context, query string, limit int) ([]models.WorkCandidate, error) {
	f.searchCalls++
	if f.searchFunc != nil {
		return f.searchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (f *fakeWorkRepo) Create(ctx context.Context, work *models.Work) error {
	if f.createFunc != nil {
		if err := f.createFunc(ctx, work); err != nil {
			return err
		}
	}
	if work.ID == uuid.Nil {
		work.ID = uuid.New()
	}
	f.created = append(f.created, work)
	return nil
}

func (f *fakeWorkRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Work, error) {
	for _, w := range f.created {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWorkRepo) List(ctx context.Context, limit, offset int) ([]models.Work, error) {
	return nil, nil
}

type fakeCharacterRepo struct {
	createBatchFunc func(ctx context.Context, characters []*models.Character) (int, error)

	created []*models.Character
}

func (f *fakeCharacterRepo) CreateBatch(ctx context.Context, characters []*models.Character) (int, error) {
	if f.createBatchFunc != nil {
		return f.createBatchFunc(ctx, characters)
	}
	f.created = append(f.created, characters...)
	return len(characters), nil
}

func (f *fakeCharacterRepo) ListByWork(ctx context.Context, workID uuid.UUID) ([]models.Character, error) {
	return nil, nil
}

type fakeSnapshotRepo struct {
	recordErr error
	recorded  []*models.SourceSnapshot
}

func (f *fakeSnapshotRepo) Record(ctx context.Context, snapshot *models.SourceSnapshot) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, snapshot)
	return nil
}

// fakeClaimRepo tracks live claims in memory, honoring uniqueness per
// normalized name the way the backing table does.
type fakeClaimRepo struct {
	held     map[string]string
	acquires int
	releases int
}

func newFakeClaimRepo() *fakeClaimRepo {
	return &fakeClaimRepo{held: make(map[string]string)}
}

func (f *fakeClaimRepo) TryAcquire(ctx context.Context, normalizedName, claimedBy string, ttl time.Duration) (bool, error) {
	f.acquires++
	if _, ok := f.held[normalizedName]; ok {
		return false, nil
	}
	f.held[normalizedName] = claimedBy
	return true, nil
}

func (f *fakeClaimRepo) Release(ctx context.Context, normalizedName, claimedBy string) error {
	f.releases++
	if f.held[normalizedName] == claimedBy {
		delete(f.held, normalizedName)
	}
	return nil
}

type fakeHarvester struct {
	results []scrape.SourceResult
	err     error
	calls   int
}

func (f *fakeHarvester) Harvest(ctx context.Context, workName string) ([]scrape.SourceResult, error) {
	f.calls++
	return f.results, f.err
}

func strPtr(s string) *string { return &s }

// uuidFromByte builds a deterministic uuid for test fixtures.
func uuidFromByte(b byte) uuid.UUID {
	var id uuid.UUID
	id[15] = b
	id[6] = 0x40
	id[8] = 0x80
	return id
}
