package explorersvc

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/DharaPatel007/NexusLibrary/model"
	borrowrepo "github.com/DharaPatel007/NexusLibrary/repository/borrow"
	catalogrepo "github.com/DharaPatel007/NexusLibrary/repository/catalog"
	profilerepo "github.com/DharaPatel007/NexusLibrary/repository/profile"
)

// paperShelf is the synthetic genre research papers are browsed under.
const paperShelf = "Research Papers"

var bookKinds = []model.ItemKind{model.KindEBook, model.KindPrintedBook, model.KindAudiobook}

// Fallback genres for users with no borrowing history yet.
var genrePreferences = map[model.Role][]string{
	model.RoleStudent:    {"Fiction", "Technology", "Science"},
	model.RoleFaculty:    {"Non-Fiction", "History", "Science"},
	model.RoleResearcher: {"Science", "Technology"},
	model.RoleGuest:      {"Fiction", "History"},
	model.RoleUnknown:    {"Fiction", "Technology"},
}

type HomeData struct {
	UserType        model.Role               `json:"user_type"`
	Recommendations []model.Item             `json:"recommendations"`
	Trending        []model.Item             `json:"trending"`
	ResearchPapers  []model.Item             `json:"research_papers"`
	MostBorrowed    []borrowrepo.TitleCount  `json:"most_borrowed"`
	PopularGenres   []borrowrepo.GenreCount  `json:"popular_genres"`
}

// Service is read-only analytics over the catalog and the ledger.
type Service interface {
	Genres(ctx context.Context) ([]string, error)
	Explore(ctx context.Context, userID int64, genre string) ([]model.Item, error)
	Search(ctx context.Context, userID int64, q, mode string) ([]model.Item, error)
	Home(ctx context.Context, userID int64) (*HomeData, error)
}

type service struct {
	cat catalogrepo.Repo
	br  borrowrepo.Repo
	pr  profilerepo.Repo

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

func New(cat catalogrepo.Repo, br borrowrepo.Repo, pr profilerepo.Repo) Service {
	return &service{cat: cat, br: br, pr: pr, now: time.Now, shuffle: rand.Shuffle}
}

func (s *service) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.cat.BookGenres(ctx)
	if err != nil {
		return nil, err
	}
	genres = append(genres, paperShelf)
	sort.Strings(genres)
	return genres, nil
}

func (s *service) Explore(ctx context.Context, userID int64, genre string) ([]model.Item, error) {
	if genre == paperShelf {
		return s.cat.Papers(ctx, 0)
	}

	var out []model.Item
	for _, kind := range bookKinds {
		items, err := s.cat.ByGenre(ctx, kind, genre)
		if err != nil {
			return nil, err
		}
		// Hide what the user has already borrowed.
		borrowed, err := s.br.BorrowedItemIDs(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if !borrowed[it.ID] {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, userID int64, q, mode string) ([]model.Item, error) {
	if q == "" {
		return nil, nil
	}
	role, err := s.pr.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	kinds := bookKinds
	// Guests do not see research papers in results.
	if role != model.RoleGuest {
		kinds = append(append([]model.ItemKind{}, bookKinds...), model.KindResearchPaper)
	}

	var out []model.Item
	for _, kind := range kinds {
		items, err := s.cat.Search(ctx, kind, mode, q)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *service) Home(ctx context.Context, userID int64) (*HomeData, error) {
	role, err := s.pr.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs, err := s.recommendations(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	trending, err := s.trending(ctx)
	if err != nil {
		return nil, err
	}
	papers, err := s.cat.Papers(ctx, 5)
	if err != nil {
		return nil, err
	}
	mostBorrowed, err := s.br.MostBorrowedTitles(ctx, 5)
	if err != nil {
		return nil, err
	}
	popular, err := s.br.PopularGenres(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &HomeData{
		UserType:        role,
		Recommendations: recs,
		Trending:        trending,
		ResearchPapers:  papers,
		MostBorrowed:    mostBorrowed,
		PopularGenres:   popular,
	}, nil
}

// recommendations picks from the genres the user has borrowed before,
// falling back to per-role defaults, then takes a bounded random sample.
func (s *service) recommendations(ctx context.Context, userID int64, role model.Role) ([]model.Item, error) {
	genres, err := s.br.UserGenres(ctx, userID)
	if err != nil {
		return nil, err
	}

	fromHistory := len(genres) > 0
	if !fromHistory {
		genres = genrePreferences[role]
	}

	var pool []model.Item
	for _, kind := range bookKinds {
		items, err := s.cat.ByGenres(ctx, kind, genres, 5)
		if err != nil {
			return nil, err
		}
		if fromHistory {
			borrowed, err := s.br.BorrowedItemIDs(ctx, userID, kind)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				if !borrowed[it.ID] {
					pool = append(pool, it)
				}
			}
		} else {
			pool = append(pool, items...)
		}
	}

	if len(pool) > 10 {
		pool = pool[:10]
	}
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > 5 {
		pool = pool[:5]
	}
	return pool, nil
}

// trending counts ledger entries over the last 30 days, with an
// all-time fallback when the recent window is empty.
func (s *service) trending(ctx context.Context) ([]model.Item, error) {
	since := s.now().AddDate(0, 0, -30)
	counts, err := s.br.TrendingCounts(ctx, &since, 5)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		counts, err = s.br.TrendingCounts(ctx, nil, 5)
		if err != nil {
			return nil, err
		}
	}

	var out []model.Item
	for _, c := range counts {
		it, err := s.cat.Resolve(ctx, model.ItemRef{Kind: c.Kind, ID: c.ID})
		if err != nil {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}
