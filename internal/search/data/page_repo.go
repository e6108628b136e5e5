package data

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lk2023060901/ai-search-backend/internal/search/cache"
)

// PageDetailPO represents the database model
type PageDetailPO struct {
	ID        uint   `gorm:"primarykey"`
	URL       string `gorm:"size:2048;not null;uniqueIndex:idx_page_details_url"`
	Details   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (PageDetailPO) TableName() string {
	return "page_details"
}

// PageRepo implements cache.PageRepo on PostgreSQL.
type PageRepo struct {
	db *gorm.DB
}

func NewPageRepo(db *gorm.DB) cache.PageRepo {
	return &PageRepo{db: db}
}

// Save inserts pages in one batch. Conflicting URLs are ignored so the
// first stored version of a page is kept.
func (r *PageRepo) Save(ctx context.Context, pages []*cache.PageDetail) error {
	if len(pages) == 0 {
		return nil
	}

	pos := make([]PageDetailPO, len(pages))
	for i, p := range pages {
		pos[i] = PageDetailPO{
			URL:       p.URL,
			Details:   p.Details,
			CreatedAt: p.CreatedAt,
		}
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).
		Create(&pos).Error
}

// GetByURLs returns stored details keyed by URL.
func (r *PageRepo) GetByURLs(ctx context.Context, urls []string) (map[string]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	var pos []PageDetailPO
	if err := r.db.WithContext(ctx).
		Where("url IN ?", urls).
		Find(&pos).Error; err != nil {
		return nil, err
	}

	found := make(map[string]string, len(pos))
	for _, po := range pos {
		found[po.URL] = po.Details
	}
	return found, nil
}
