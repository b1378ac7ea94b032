package catalogrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"libraryms/model"
)

var ErrNotFound = errors.New("record not found")

type Repo interface {
	CreateBook(ctx context.Context, b *model.Book) error
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int64) error
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	ListBooks(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error)

	AddCopy(ctx context.Context, c *model.BookCopy) error
	CopyByBarcode(ctx context.Context, barcode string) (*model.BookCopy, error)
	CopyByID(ctx context.Context, id int64) (*model.BookCopy, error)
	ListCopiesForBook(ctx context.Context, bookID int64) ([]model.BookCopy, error)
	SetCopyStatus(ctx context.Context, copyID int64, status model.CopyStatus) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

// bookColumns selects a book with its copy counts derived from
// book_copies, so availableCopies can never drift from copy statuses.
const bookColumns = `
	b.id, b.title, b.author, b.isbn, b.publisher, b.publish_year,
	b.category, b.description, b.created_at, b.updated_at,
	COALESCE(COUNT(bc.*), 0)::BIGINT AS total_copies,
	COALESCE(COUNT(bc.*) FILTER (WHERE bc.status = 'available'), 0)::BIGINT AS available_copies`

func (r *repo) CreateBook(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, isbn, publisher, publish_year, category, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Publisher, b.PublishYear, b.Category, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) UpdateBook(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title=$1, author=$2, isbn=$3, publisher=$4, publish_year=$5,
		    category=$6, description=$7, updated_at=now()
		WHERE id=$8
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Publisher, b.PublishYear, b.Category, b.Description, b.ID,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repo) DeleteBook(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM books b
		LEFT JOIN book_copies bc ON bc.book_id = b.id
		WHERE b.id = $1
		GROUP BY b.id`, bookColumns)
	var b model.Book
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) ListBooks(ctx context.Context, search string, f model.Filters) ([]model.Book, model.Metadata, error) {
	q := fmt.Sprintf(`
		SELECT COUNT(*) OVER() AS total, %s
		FROM books b
		LEFT JOIN book_copies bc ON bc.book_id = b.id
		WHERE ($1 = '' OR b.title ILIKE '%%'||$1||'%%' OR b.author ILIKE '%%'||$1||'%%'
		       OR b.category ILIKE '%%'||$1||'%%' OR b.isbn = $1)
		GROUP BY b.id
		ORDER BY b.id DESC
		LIMIT $2 OFFSET $3`, bookColumns)

	rows, err := r.db.QueryContext(ctx, q, search, f.Limit(), f.Offset())
	if err != nil {
		return nil, model.Metadata{}, err
	}
	defer rows.Close()

	total := 0
	books := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&total,
			&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Publisher, &b.PublishYear,
			&b.Category, &b.Description, &b.CreatedAt, &b.UpdatedAt,
			&b.TotalCopies, &b.AvailableCopies,
		); err != nil {
			return nil, model.Metadata{}, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Metadata{}, err
	}
	return books, model.CalculateMetadata(total, f.Page, f.PageSize), nil
}

func (r *repo) AddCopy(ctx context.Context, c *model.BookCopy) error {
	const q = `
		INSERT INTO book_copies (book_id, barcode, status, location, condition)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, acquired_date`
	return r.db.QueryRowContext(ctx, q,
		c.BookID, c.Barcode, c.Status, c.Location, c.Condition,
	).Scan(&c.ID, &c.AcquiredDate)
}

func (r *repo) CopyByBarcode(ctx context.Context, barcode string) (*model.BookCopy, error) {
	var c model.BookCopy
	err := r.db.GetContext(ctx, &c, `SELECT * FROM book_copies WHERE barcode = $1`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) CopyByID(ctx context.Context, id int64) (*model.BookCopy, error) {
	var c model.BookCopy
	err := r.db.GetContext(ctx, &c, `SELECT * FROM book_copies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) ListCopiesForBook(ctx context.Context, bookID int64) ([]model.BookCopy, error) {
	copies := []model.BookCopy{}
	err := r.db.SelectContext(ctx, &copies,
		`SELECT * FROM book_copies WHERE book_id = $1 ORDER BY id`, bookID)
	return copies, err
}

func (r *repo) SetCopyStatus(ctx context.Context, copyID int64, status model.CopyStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE book_copies SET status = $2 WHERE id = $1`, copyID, status)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}
