package model

import (
	"time"

	"gorm.io/gorm"
)

// Article data model. The folded columns back accent- and case-insensitive
// search and are rewritten on every save.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"` // the author
	Author      *User      `gorm:"foreignKey:AuthorID" json:"-"`
	ImagePath   *string    `gorm:"size:255" json:"image_path"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:ArticleID" json:"-"`

	TitleFolded   string `gorm:"size:255;index" json:"-"`
	ContentFolded string `gorm:"type:text" json:"-"`
}

func (a *Article) BeforeSave(tx *gorm.DB) error {
	a.TitleFolded = Fold(a.Title)
	a.ContentFolded = Fold(a.Content)

	return nil
}

// AuthorName is empty when the author was not loaded or no longer exists.
func (a *Article) AuthorName() string {
	if a.Author == nil {
		return ""
	}

	return a.Author.Name
}
