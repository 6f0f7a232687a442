package postgres

import (
	"context"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/domain/repository"
	"pandore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository is the constructor for likeRepository.
func NewLikeRepository(db *gorm.DB) repository.LikeRepository {
	return &likeRepository{db: db}
}

// InsertIfAbsent relies on the (user_id, item_type, item_id) unique index; a conflicting row is left untouched.
func (repo *likeRepository) InsertIfAbsent(ctx context.Context, like *entity.Like) (bool, error) {
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	likeM := &model.LikeModel{
		ID:        like.ID,
		UserID:    like.UserID,
		ItemType:  like.ItemType.String(),
		ItemID:    like.ItemID,
		CreatedAt: like.CreatedAt,
	}

	result := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(likeM)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to insert like")
	}

	like.CreatedAt = likeM.CreatedAt

	return result.RowsAffected == 1, nil
}

func (repo *likeRepository) Delete(ctx context.Context, userID uuid.UUID, itemType entity.ItemType, itemID uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType.String(), itemID).
		Delete(&model.LikeModel{})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete like")
	}

	return result.RowsAffected > 0, nil
}

func (repo *likeRepository) ListByUser(ctx context.Context, userID uuid.UUID, itemType *entity.ItemType) ([]*entity.Like, error) {
	query := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if itemType != nil {
		query = query.Where("item_type = ?", itemType.String())
	}

	var likeModels []*model.LikeModel
	if err := query.Order("created_at DESC").Find(&likeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list likes")
	}

	likes := make([]*entity.Like, 0, len(likeModels))
	for _, likeM := range likeModels {
		likes = append(likes, &entity.Like{
			ID:        likeM.ID,
			UserID:    likeM.UserID,
			ItemType:  entity.ItemType(likeM.ItemType),
			ItemID:    likeM.ItemID,
			CreatedAt: likeM.CreatedAt,
		})
	}

	return likes, nil
}
