package catalogsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"libraryms/model"
	catalogrepo "libraryms/repository/catalog"
)

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrCopyNotFound   ErrCode = "COPY_NOT_FOUND"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrCopyBorrowed   ErrCode = "COPY_BORROWED"
	ErrStatusReserved ErrCode = "STATUS_RESERVED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	CreateBook(ctx context.Context, b *model.Book) error
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int64) error
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	ListBooks(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error)

	// AddCopy registers a new physical copy; a barcode is generated
	// when the request leaves it empty.
	AddCopy(ctx context.Context, c *model.BookCopy) error
	CopyByBarcode(ctx context.Context, barcode string) (*model.BookCopy, error)
	ListCopiesForBook(ctx context.Context, bookID int64) ([]model.BookCopy, error)

	// MarkCopy handles the manual maintenance/lost/available
	// transitions. Borrowed copies belong to circulation and cannot
	// be marked manually.
	MarkCopy(ctx context.Context, copyID int64, status model.CopyStatus) (*model.BookCopy, error)
}

type service struct{ r catalogrepo.Repo }

func New(r catalogrepo.Repo) Service { return &service{r: r} }

func (s *service) CreateBook(ctx context.Context, b *model.Book) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return makeErr(ErrBadInput)
	}
	return s.r.CreateBook(ctx, b)
}

func (s *service) UpdateBook(ctx context.Context, b *model.Book) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return makeErr(ErrBadInput)
	}
	err := s.r.UpdateBook(ctx, b)
	if errors.Is(err, catalogrepo.ErrNotFound) {
		return makeErr(ErrBookNotFound)
	}
	return err
}

func (s *service) DeleteBook(ctx context.Context, id int64) error {
	err := s.r.DeleteBook(ctx, id)
	if errors.Is(err, catalogrepo.ErrNotFound) {
		return makeErr(ErrBookNotFound)
	}
	return err
}

func (s *service) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.GetBook(ctx, id)
	if errors.Is(err, catalogrepo.ErrNotFound) {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, err
}

func (s *service) ListBooks(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error) {
	return s.r.ListBooks(ctx, search, f.Normalize())
}

func (s *service) AddCopy(ctx context.Context, c *model.BookCopy) error {
	if c.BookID <= 0 {
		return makeErr(ErrBadInput)
	}
	if _, err := s.r.GetBook(ctx, c.BookID); err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	if c.Barcode == "" {
		c.Barcode = newBarcode()
	}
	if c.Status == "" {
		c.Status = model.CopyAvailable
	}
	if c.Status != model.CopyAvailable && c.Status != model.CopyMaintenance {
		// New copies enter as available or under maintenance; borrowed
		// and lost are not valid acquisition states.
		return makeErr(ErrBadInput)
	}
	if c.Condition == "" {
		c.Condition = model.ConditionGood
	}
	if !c.Condition.Valid() {
		return makeErr(ErrBadInput)
	}
	return s.r.AddCopy(ctx, c)
}

func newBarcode() string {
	return "BC-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *service) CopyByBarcode(ctx context.Context, barcode string) (*model.BookCopy, error) {
	c, err := s.r.CopyByBarcode(ctx, barcode)
	if errors.Is(err, catalogrepo.ErrNotFound) {
		return nil, makeErr(ErrCopyNotFound)
	}
	return c, err
}

func (s *service) ListCopiesForBook(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	return s.r.ListCopiesForBook(ctx, bookID)
}

func (s *service) MarkCopy(ctx context.Context, copyID int64, status model.CopyStatus) (*model.BookCopy, error) {
	switch status {
	case model.CopyAvailable, model.CopyMaintenance, model.CopyLost:
	case model.CopyBorrowed:
		// Only a checkout may move a copy into borrowed.
		return nil, makeErr(ErrStatusReserved)
	default:
		return nil, makeErr(ErrBadInput)
	}

	c, err := s.r.CopyByID(ctx, copyID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrNotFound) {
			return nil, makeErr(ErrCopyNotFound)
		}
		return nil, err
	}

	switch c.Status {
	case model.CopyBorrowed:
		// Returning the book, not an edit screen, frees a borrowed copy.
		return nil, makeErr(ErrCopyBorrowed)
	case model.CopyAvailable, model.CopyMaintenance, model.CopyLost:
	default:
		return nil, makeErr(ErrBadInput)
	}

	if err := s.r.SetCopyStatus(ctx, copyID, status); err != nil {
		return nil, err
	}
	c.Status = status
	return c, nil
}
