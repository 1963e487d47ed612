package storage

import (
	"cinesocial/backend/internal/models"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListComments returns every comment of a movie (top-level and replies), oldest first.
func (s *Service) ListComments(ctx context.Context, movieID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *Service) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Service) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.DB.WithContext(ctx).Create(c).Error
}

// DeleteComment removes the comment, its replies and every reaction on them.
func (s *Service) DeleteComment(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{id}
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_comment_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids = append(ids, replyIDs...)

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) CountComments(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// UserReactions maps comment ID to IsLike for the comments the user reacted to.
func (s *Service) UserReactions(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return out, nil
	}

	var rows []models.CommentReaction
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.CommentID] = r.IsLike
	}
	return out, nil
}

// ToggleReaction applies a like/dislike under a row lock on the comment so the
// counters and the reaction row always change together.
func (s *Service) ToggleReaction(ctx context.Context, userID, commentID uint, isLike bool) (models.ReactionResult, error) {
	var result models.ReactionResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, commentID).Error; err != nil {
			return translate(err)
		}

		var existing models.CommentReaction
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.CommentReaction{UserID: userID, CommentID: commentID, IsLike: isLike}).Error; err != nil {
				return err
			}
			bump(&c, isLike, 1)
			result.Action = models.ReactionAdded

		case err != nil:
			return err

		case existing.IsLike == isLike:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			bump(&c, isLike, -1)
			result.Action = models.ReactionRemoved

		default:
			prev := existing.IsLike
			if err := tx.Model(&existing).Update("is_like", isLike).Error; err != nil {
				return err
			}
			bump(&c, prev, -1)
			bump(&c, isLike, 1)
			result.Action = models.ReactionSwitched
		}

		if err := tx.Model(&c).Updates(map[string]any{"likes": c.Likes, "dislikes": c.Dislikes}).Error; err != nil {
			return err
		}
		result.Likes, result.Dislikes = c.Likes, c.Dislikes
		return nil
	})
	return result, err
}

func bump(c *models.Comment, like bool, delta int) {
	if like {
		c.Likes = max(0, c.Likes+delta)
	} else {
		c.Dislikes = max(0, c.Dislikes+delta)
	}
}
