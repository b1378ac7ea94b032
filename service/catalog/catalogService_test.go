package catalogsvc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"libraryms/model"
	catalogrepo "libraryms/repository/catalog"
	catalogsvc "libraryms/service/catalog"
)

type repoMock struct {
	createBookFn    func(ctx context.Context, b *model.Book) error
	updateBookFn    func(ctx context.Context, b *model.Book) error
	deleteBookFn    func(ctx context.Context, id int64) error
	getBookFn       func(ctx context.Context, id int64) (*model.Book, error)
	listBooksFn     func(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error)
	addCopyFn       func(ctx context.Context, c *model.BookCopy) error
	copyByBarcodeFn func(ctx context.Context, barcode string) (*model.BookCopy, error)
	copyByIDFn      func(ctx context.Context, id int64) (*model.BookCopy, error)
	listCopiesFn    func(ctx context.Context, bookID int64) ([]model.BookCopy, error)
	setCopyStatusFn func(ctx context.Context, copyID int64, status model.CopyStatus) error
}

var _ catalogrepo.Repo = (*repoMock)(nil)

func (m *repoMock) CreateBook(ctx context.Context, b *model.Book) error {
	return m.createBookFn(ctx, b)
}
func (m *repoMock) UpdateBook(ctx context.Context, b *model.Book) error {
	return m.updateBookFn(ctx, b)
}
func (m *repoMock) DeleteBook(ctx context.Context, id int64) error { return m.deleteBookFn(ctx, id) }
func (m *repoMock) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	return m.getBookFn(ctx, id)
}
func (m *repoMock) ListBooks(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error) {
	return m.listBooksFn(ctx, search, f)
}
func (m *repoMock) AddCopy(ctx context.Context, c *model.BookCopy) error { return m.addCopyFn(ctx, c) }
func (m *repoMock) CopyByBarcode(ctx context.Context, barcode string) (*model.BookCopy, error) {
	return m.copyByBarcodeFn(ctx, barcode)
}
func (m *repoMock) CopyByID(ctx context.Context, id int64) (*model.BookCopy, error) {
	return m.copyByIDFn(ctx, id)
}
func (m *repoMock) ListCopiesForBook(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	return m.listCopiesFn(ctx, bookID)
}
func (m *repoMock) SetCopyStatus(ctx context.Context, copyID int64, status model.CopyStatus) error {
	return m.setCopyStatusFn(ctx, copyID, status)
}

func TestCreateBook_Validation(t *testing.T) {
	svc := catalogsvc.New(&repoMock{})
	ctx := context.Background()

	err := svc.CreateBook(ctx, &model.Book{Title: "  ", Author: "x"})
	require.Equal(t, catalogsvc.ErrBadInput, catalogsvc.Code(err))

	err = svc.CreateBook(ctx, &model.Book{Title: "x", Author: ""})
	require.Equal(t, catalogsvc.ErrBadInput, catalogsvc.Code(err))
}

func TestUpdateBook_NotFound(t *testing.T) {
	m := &repoMock{
		updateBookFn: func(ctx context.Context, b *model.Book) error { return catalogrepo.ErrNotFound },
	}
	svc := catalogsvc.New(m)

	err := svc.UpdateBook(context.Background(), &model.Book{ID: 9, Title: "t", Author: "a"})
	require.Equal(t, catalogsvc.ErrBookNotFound, catalogsvc.Code(err))
}

func TestAddCopy_Defaults(t *testing.T) {
	var saved *model.BookCopy
	m := &repoMock{
		getBookFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id}, nil
		},
		addCopyFn: func(ctx context.Context, c *model.BookCopy) error {
			saved = c
			return nil
		},
	}
	svc := catalogsvc.New(m)

	c := &model.BookCopy{BookID: 1}
	require.NoError(t, svc.AddCopy(context.Background(), c))
	require.NotNil(t, saved)
	require.True(t, strings.HasPrefix(saved.Barcode, "BC-"), "barcode %q", saved.Barcode)
	require.Len(t, saved.Barcode, 11)
	require.Equal(t, model.CopyAvailable, saved.Status)
	require.Equal(t, model.ConditionGood, saved.Condition)
}

func TestAddCopy_BookMissing(t *testing.T) {
	m := &repoMock{
		getBookFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, catalogrepo.ErrNotFound
		},
	}
	svc := catalogsvc.New(m)

	err := svc.AddCopy(context.Background(), &model.BookCopy{BookID: 5})
	require.Equal(t, catalogsvc.ErrBookNotFound, catalogsvc.Code(err))
}

func TestAddCopy_RejectsBorrowedAcquisition(t *testing.T) {
	m := &repoMock{
		getBookFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id}, nil
		},
	}
	svc := catalogsvc.New(m)

	for _, s := range []model.CopyStatus{model.CopyBorrowed, model.CopyLost} {
		err := svc.AddCopy(context.Background(), &model.BookCopy{BookID: 1, Status: s})
		require.Equal(t, catalogsvc.ErrBadInput, catalogsvc.Code(err), "status %s", s)
	}
}

func TestMarkCopy_Transitions(t *testing.T) {
	current := model.CopyAvailable
	var set model.CopyStatus
	m := &repoMock{
		copyByIDFn: func(ctx context.Context, id int64) (*model.BookCopy, error) {
			return &model.BookCopy{ID: id, Status: current}, nil
		},
		setCopyStatusFn: func(ctx context.Context, copyID int64, status model.CopyStatus) error {
			set = status
			return nil
		},
	}
	svc := catalogsvc.New(m)
	ctx := context.Background()

	c, err := svc.MarkCopy(ctx, 1, model.CopyMaintenance)
	require.NoError(t, err)
	require.Equal(t, model.CopyMaintenance, c.Status)
	require.Equal(t, model.CopyMaintenance, set)

	// borrowed is circulation's state, not an edit target
	_, err = svc.MarkCopy(ctx, 1, model.CopyBorrowed)
	require.Equal(t, catalogsvc.ErrStatusReserved, catalogsvc.Code(err))

	// a borrowed copy is freed by a return, not by an edit
	current = model.CopyBorrowed
	_, err = svc.MarkCopy(ctx, 1, model.CopyAvailable)
	require.Equal(t, catalogsvc.ErrCopyBorrowed, catalogsvc.Code(err))
}

func TestMarkCopy_NotFound(t *testing.T) {
	m := &repoMock{
		copyByIDFn: func(ctx context.Context, id int64) (*model.BookCopy, error) {
			return nil, catalogrepo.ErrNotFound
		},
	}
	svc := catalogsvc.New(m)

	_, err := svc.MarkCopy(context.Background(), 7, model.CopyLost)
	require.Equal(t, catalogsvc.ErrCopyNotFound, catalogsvc.Code(err))
}
