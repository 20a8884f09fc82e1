package dto

import "github.com/psikotes-ai/psikotes_api/model"

type BookResponse struct {
	Book     model.Book `json:"book"`
	FileURL  string     `json:"file_url,omitempty"`
	CoverURL string     `json:"cover_url,omitempty"`
}

type BookListResponse struct {
	Books []BookResponse `json:"books"`
	Total int            `json:"total"`
}

type SaveProgressRequest struct {
	CurrentPage int `json:"current_page" validate:"min=0"`
}

func (r SaveProgressRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CreateAnnotationRequest struct {
	Page  int          `json:"page" validate:"min=0"`
	Color string       `json:"color,omitempty" validate:"omitempty,max=16"`
	Note  string       `json:"note,omitempty" validate:"omitempty,max=2000"`
	Rects []model.Rect `json:"rects,omitempty" validate:"omitempty,dive"`
}

func (r CreateAnnotationRequest) Validate() error {
	return GetValidator().Struct(r)
}
