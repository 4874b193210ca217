package explorersvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DharaPatel007/NexusLibrary/model"
	borrowrepo "github.com/DharaPatel007/NexusLibrary/repository/borrow"
)

// --- fakes ---

type fakeCatalog struct {
	items map[model.ItemRef]model.Item
}

func (f *fakeCatalog) all(kind model.ItemKind) []model.Item {
	var out []model.Item
	for ref, it := range f.items {
		if ref.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func (f *fakeCatalog) Resolve(ctx context.Context, ref model.ItemRef) (*model.Item, error) {
	it, ok := f.items[ref]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &it, nil
}

func (f *fakeCatalog) CreateItem(ctx context.Context, it *model.Item) (int64, error) { return 0, nil }
func (f *fakeCatalog) TryDecrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	return false, nil
}
func (f *fakeCatalog) IncrementCopies(ctx context.Context, tx *sql.Tx, bookID int64) error {
	return nil
}
func (f *fakeCatalog) LockPrintedBook(ctx context.Context, tx *sql.Tx, bookID int64) (int, error) {
	return 0, nil
}
func (f *fakeCatalog) CopiesAvailable(ctx context.Context, bookID int64) (int, error) { return 0, nil }

func (f *fakeCatalog) BookGenres(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for ref, it := range f.items {
		if ref.Kind == model.KindResearchPaper || seen[it.Genre] {
			continue
		}
		seen[it.Genre] = true
		out = append(out, it.Genre)
	}
	return out, nil
}

func (f *fakeCatalog) ByGenre(ctx context.Context, kind model.ItemKind, genre string) ([]model.Item, error) {
	var out []model.Item
	for _, it := range f.all(kind) {
		if it.Genre == genre {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ByGenres(ctx context.Context, kind model.ItemKind, genres []string, limit int) ([]model.Item, error) {
	want := map[string]bool{}
	for _, g := range genres {
		want[g] = true
	}
	var out []model.Item
	for _, it := range f.all(kind) {
		if want[it.Genre] {
			out = append(out, it)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) Papers(ctx context.Context, limit int) ([]model.Item, error) {
	out := f.all(model.KindResearchPaper)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalog) Search(ctx context.Context, kind model.ItemKind, mode, q string) ([]model.Item, error) {
	return f.all(kind), nil
}

type fakeLedger struct {
	borrowed map[model.ItemRef]bool
	genres   map[int64][]string
	recent   []borrowrepo.ItemCount
	allTime  []borrowrepo.ItemCount
}

func (f *fakeLedger) OpenCount(ctx context.Context, tx *sql.Tx, userID int64) (int, error) {
	return 0, nil
}
func (f *fakeLedger) HasOpen(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (bool, error) {
	return false, nil
}
func (f *fakeLedger) Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error { return nil }
func (f *fakeLedger) FindOpenForUpdate(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef) (*model.Borrowing, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeLedger) Close(ctx context.Context, tx *sql.Tx, borrowID int64, returnDate time.Time, fine float64) error {
	return nil
}
func (f *fakeLedger) ListMyBorrowings(ctx context.Context, userID int64) ([]borrowrepo.HistoryRow, error) {
	return nil, nil
}

func (f *fakeLedger) BorrowedItemIDs(ctx context.Context, userID int64, kind model.ItemKind) (map[int64]bool, error) {
	out := map[int64]bool{}
	for ref, ok := range f.borrowed {
		if ok && ref.Kind == kind {
			out[ref.ID] = true
		}
	}
	return out, nil
}

func (f *fakeLedger) UserGenres(ctx context.Context, userID int64) ([]string, error) {
	return f.genres[userID], nil
}

func (f *fakeLedger) TrendingCounts(ctx context.Context, since *time.Time, limit int) ([]borrowrepo.ItemCount, error) {
	if since != nil {
		return f.recent, nil
	}
	return f.allTime, nil
}

func (f *fakeLedger) MostBorrowedTitles(ctx context.Context, limit int) ([]borrowrepo.TitleCount, error) {
	return []borrowrepo.TitleCount{{Title: "Dune", Total: 9}}, nil
}
func (f *fakeLedger) PopularGenres(ctx context.Context, limit int) ([]borrowrepo.GenreCount, error) {
	return []borrowrepo.GenreCount{{Genre: "Fiction", Total: 12}}, nil
}

type fakeProfiles struct {
	roles map[int64]model.Role
}

func (f *fakeProfiles) RoleOf(ctx context.Context, userID int64) (model.Role, error) {
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return model.RoleUnknown, nil
}
func (f *fakeProfiles) RoleOfTx(ctx context.Context, tx *sql.Tx, userID int64) (model.Role, error) {
	return f.RoleOf(ctx, userID)
}
func (f *fakeProfiles) Create(ctx context.Context, userID int64, role model.Role) error { return nil }
func (f *fakeProfiles) CreateTx(ctx context.Context, tx *sql.Tx, userID int64, role model.Role) error {
	return nil
}

// --- helpers ---

func newTestService(cat *fakeCatalog, br *fakeLedger, pr *fakeProfiles) *service {
	return &service{
		cat:     cat,
		br:      br,
		pr:      pr,
		now:     func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
		shuffle: func(n int, swap func(i, j int)) {},
	}
}

func item(kind model.ItemKind, id int64, title, genre string) model.Item {
	return model.Item{Kind: kind, ID: id, Title: title, Author: "A. Author", Genre: genre}
}

func seedCatalog() *fakeCatalog {
	f := &fakeCatalog{items: map[model.ItemRef]model.Item{}}
	add := func(it model.Item) { f.items[model.ItemRef{Kind: it.Kind, ID: it.ID}] = it }
	add(item(model.KindEBook, 1, "Neuromancer", "Fiction"))
	add(item(model.KindEBook, 2, "Clean Architecture", "Technology"))
	add(item(model.KindPrintedBook, 1, "Dune", "Fiction"))
	add(item(model.KindAudiobook, 1, "Sapiens", "History"))
	add(item(model.KindResearchPaper, 1, "Raft Consensus", "Research"))
	return f
}

// --- tests ---

func TestGenres_IncludesPaperShelfSorted(t *testing.T) {
	svc := newTestService(seedCatalog(), &fakeLedger{}, &fakeProfiles{})

	got, err := svc.Genres(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Fiction", "History", "Research Papers", "Technology"}, got)
}

func TestExplore_PaperShelf(t *testing.T) {
	svc := newTestService(seedCatalog(), &fakeLedger{}, &fakeProfiles{})

	got, err := svc.Explore(context.Background(), 1, "Research Papers")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Raft Consensus", got[0].Title)
}

func TestExplore_ExcludesBorrowed(t *testing.T) {
	br := &fakeLedger{borrowed: map[model.ItemRef]bool{
		{Kind: model.KindEBook, ID: 1}: true,
	}}
	svc := newTestService(seedCatalog(), br, &fakeProfiles{})

	got, err := svc.Explore(context.Background(), 1, "Fiction")
	require.NoError(t, err)
	require.Len(t, got, 1, "borrowed ebook is hidden, printed copy of Dune remains")
	require.Equal(t, "Dune", got[0].Title)
}

func TestSearch_GuestExcludesPapers(t *testing.T) {
	cat := seedCatalog()
	pr := &fakeProfiles{roles: map[int64]model.Role{1: model.RoleGuest, 2: model.RoleStudent}}
	svc := newTestService(cat, &fakeLedger{}, pr)
	ctx := context.Background()

	asGuest, err := svc.Search(ctx, 1, "anything", "keyword")
	require.NoError(t, err)
	for _, it := range asGuest {
		require.NotEqual(t, model.KindResearchPaper, it.Kind)
	}

	asStudent, err := svc.Search(ctx, 2, "anything", "keyword")
	require.NoError(t, err)
	require.Len(t, asStudent, len(asGuest)+1, "students see the paper too")
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(seedCatalog(), &fakeLedger{}, &fakeProfiles{})

	got, err := svc.Search(context.Background(), 1, "", "keyword")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRecommendations_FromHistoryExcludesBorrowed(t *testing.T) {
	br := &fakeLedger{
		genres: map[int64][]string{1: {"Fiction"}},
		borrowed: map[model.ItemRef]bool{
			{Kind: model.KindPrintedBook, ID: 1}: true, // already read Dune
		},
	}
	svc := newTestService(seedCatalog(), br, &fakeProfiles{})

	got, err := svc.recommendations(context.Background(), 1, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Neuromancer", got[0].Title)
}

func TestRecommendations_RoleFallbackWithoutHistory(t *testing.T) {
	svc := newTestService(seedCatalog(), &fakeLedger{}, &fakeProfiles{})

	got, err := svc.recommendations(context.Background(), 1, model.RoleFaculty)
	require.NoError(t, err)
	// Faculty preferences cover History; Sapiens is the only match.
	require.Len(t, got, 1)
	require.Equal(t, "Sapiens", got[0].Title)
}

func TestTrending_RecentWindow(t *testing.T) {
	br := &fakeLedger{
		recent: []borrowrepo.ItemCount{
			{Kind: model.KindPrintedBook, ID: 1, Count: 4},
			{Kind: model.KindEBook, ID: 2, Count: 2},
		},
	}
	svc := newTestService(seedCatalog(), br, &fakeProfiles{})

	got, err := svc.trending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Dune", got[0].Title)
	require.Equal(t, "Clean Architecture", got[1].Title)
}

func TestTrending_AllTimeFallback(t *testing.T) {
	br := &fakeLedger{
		allTime: []borrowrepo.ItemCount{{Kind: model.KindEBook, ID: 1, Count: 1}},
	}
	svc := newTestService(seedCatalog(), br, &fakeProfiles{})

	got, err := svc.trending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Neuromancer", got[0].Title)
}

func TestTrending_SkipsDanglingLedgerRows(t *testing.T) {
	br := &fakeLedger{
		recent: []borrowrepo.ItemCount{
			{Kind: model.KindEBook, ID: 999, Count: 7}, // item since deleted
			{Kind: model.KindEBook, ID: 1, Count: 3},
		},
	}
	svc := newTestService(seedCatalog(), br, &fakeProfiles{})

	got, err := svc.trending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Neuromancer", got[0].Title)
}

func TestHome_AssemblesSections(t *testing.T) {
	br := &fakeLedger{
		recent: []borrowrepo.ItemCount{{Kind: model.KindPrintedBook, ID: 1, Count: 4}},
	}
	pr := &fakeProfiles{roles: map[int64]model.Role{1: model.RoleStudent}}
	svc := newTestService(seedCatalog(), br, pr)

	home, err := svc.Home(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.RoleStudent, home.UserType)
	require.NotEmpty(t, home.Recommendations)
	require.Len(t, home.Trending, 1)
	require.Len(t, home.ResearchPapers, 1)
	require.Equal(t, "Dune", home.MostBorrowed[0].Title)
	require.Equal(t, "Fiction", home.PopularGenres[0].Genre)
}
