package model

import "time"

type Book struct {
	ID         string    `bson:"_id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Author     string    `bson:"author,omitempty" json:"author,omitempty"`
	UploaderID string    `bson:"uploader_id" json:"uploader_id"`
	FileKey    string    `bson:"file_key" json:"-"`
	CoverKey   string    `bson:"cover_key,omitempty" json:"-"`
	SizeBytes  int64     `bson:"size_bytes" json:"size_bytes"`
	PageCount  int       `bson:"page_count,omitempty" json:"page_count,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type BookProgress struct {
	ID          string    `bson:"_id" json:"id"`
	BookID      string    `bson:"book_id" json:"book_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	CurrentPage int       `bson:"current_page" json:"current_page"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type BookAnnotation struct {
	ID        string    `bson:"_id" json:"id"`
	BookID    string    `bson:"book_id" json:"book_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Page      int       `bson:"page" json:"page"`
	Color     string    `bson:"color,omitempty" json:"color,omitempty"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Rects     []Rect    `bson:"rects,omitempty" json:"rects,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Rect struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
	W float64 `bson:"w" json:"w"`
	H float64 `bson:"h" json:"h"`
}
