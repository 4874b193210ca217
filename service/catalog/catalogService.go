package catalogsvc

import (
	"context"
	"errors"

	"github.com/DharaPatel007/NexusLibrary/model"
	catalogrepo "github.com/DharaPatel007/NexusLibrary/repository/catalog"
)

var ErrBadItem = errors.New("bad item")

type Service interface {
	Create(ctx context.Context, it *model.Item) (int64, error)
	Detail(ctx context.Context, ref model.ItemRef) (*model.Item, error)
}

type service struct {
	cr catalogrepo.Repo
}

func New(cr catalogrepo.Repo) Service { return &service{cr: cr} }

func (s *service) Create(ctx context.Context, it *model.Item) (int64, error) {
	if it.Title == "" || it.Author == "" || it.Genre == "" {
		return 0, ErrBadItem
	}
	switch it.Kind {
	case model.KindEBook:
		if it.FileURL == "" || it.FileSizeMB <= 0 {
			return 0, ErrBadItem
		}
	case model.KindPrintedBook:
		if it.ISBN == "" || it.CopiesAvailable < 0 {
			return 0, ErrBadItem
		}
	case model.KindResearchPaper:
		if it.DOI == "" {
			return 0, ErrBadItem
		}
	case model.KindAudiobook:
		if it.DurationSeconds <= 0 {
			return 0, ErrBadItem
		}
	default:
		return 0, ErrBadItem
	}
	return s.cr.CreateItem(ctx, it)
}

func (s *service) Detail(ctx context.Context, ref model.ItemRef) (*model.Item, error) {
	return s.cr.Resolve(ctx, ref)
}
