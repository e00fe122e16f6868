package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) SetActiveOrg(ctx context.Context, db *gorm.DB, userID snowflake.ID, orgID *int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET active_org_id = ?, updated_at = ? WHERE id = ?`,
		orgID, time.Now().UTC(), userID,
	).Error
}
