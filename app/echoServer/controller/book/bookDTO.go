package book

import "libraryms/model"

type BookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn"`
	Publisher   string `json:"publisher"`
	PublishYear int    `json:"publishYear" validate:"gte=0"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (r BookReq) toModel() *model.Book {
	return &model.Book{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		Category:    r.Category,
		Description: r.Description,
	}
}
