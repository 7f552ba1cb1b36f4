package catalog

import (
	"context"
	"fmt"

	"whatsfresh/internal/model"

	"gorm.io/gorm"
)

const (
	preparationEntity = "Preparation"
	storyEntity       = "Story"
	imageEntity       = "Image"
)

// ListPreparations returns every preparation ordered by name
func (s *Service) ListPreparations(ctx context.Context) ([]model.Preparation, error) {
	var preps []model.Preparation
	if err := s.conn(ctx).Order("name").Order("id").Find(&preps).Error; err != nil {
		return nil, fmt.Errorf("list preparations: %w", err)
	}
	return preps, nil
}

// GetPreparation loads one preparation
func (s *Service) GetPreparation(ctx context.Context, id uint) (*model.Preparation, error) {
	return getByID[model.Preparation](s.conn(ctx), preparationEntity, id)
}

// SavePreparation creates p, or replaces the stored preparation p.ID
func (s *Service) SavePreparation(ctx context.Context, p model.Preparation) (*model.Preparation, error) {
	if err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return upsert(tx, preparationEntity, p.ID, &p)
	}); err != nil {
		return nil, err
	}
	return s.GetPreparation(ctx, p.ID)
}

// ListStoriesPage returns stories ordered by name
func (s *Service) ListStoriesPage(ctx context.Context, pageParam string, size int) (Page[model.Story], error) {
	return paginate[model.Story](s.conn(ctx).Order("name").Order("id"), pageParam, size)
}

// ListStories returns every story ordered by name
func (s *Service) ListStories(ctx context.Context) ([]model.Story, error) {
	var stories []model.Story
	if err := s.conn(ctx).Order("name").Order("id").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

// GetStory loads one story
func (s *Service) GetStory(ctx context.Context, id uint) (*model.Story, error) {
	return getByID[model.Story](s.conn(ctx), storyEntity, id)
}

// SaveStory creates st, or replaces the stored story st.ID
func (s *Service) SaveStory(ctx context.Context, st model.Story) (*model.Story, error) {
	if err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return upsert(tx, storyEntity, st.ID, &st)
	}); err != nil {
		return nil, err
	}
	return s.GetStory(ctx, st.ID)
}

// DeleteStory removes a story. Products and vendors that told it keep
// existing without one.
func (s *Service) DeleteStory(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("story_id = ?", id).Update("story_id", nil).Error; err != nil {
			return fmt.Errorf("unlink products: %w", err)
		}
		if err := tx.Model(&model.Vendor{}).Where("story_id = ?", id).Update("story_id", nil).Error; err != nil {
			return fmt.Errorf("unlink vendors: %w", err)
		}
		return deleteByID[model.Story](tx, storyEntity, id)
	})
}

// ListImagesPage returns images, newest first
func (s *Service) ListImagesPage(ctx context.Context, pageParam string, size int) (Page[model.Image], error) {
	return paginate[model.Image](s.conn(ctx).Order("id desc"), pageParam, size)
}

// ListImages returns every image, newest first
func (s *Service) ListImages(ctx context.Context) ([]model.Image, error) {
	var images []model.Image
	if err := s.conn(ctx).Order("id desc").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// GetImage loads one image
func (s *Service) GetImage(ctx context.Context, id uint) (*model.Image, error) {
	return getByID[model.Image](s.conn(ctx), imageEntity, id)
}

// CreateImage records an uploaded image
func (s *Service) CreateImage(ctx context.Context, img model.Image) (*model.Image, error) {
	img.ID = 0
	if err := s.conn(ctx).Create(&img).Error; err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image row and returns it so the caller can drop the
// blob. Products showing it keep existing without one.
func (s *Service) DeleteImage(ctx context.Context, id uint) (*model.Image, error) {
	var img *model.Image
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		img, err = getByID[model.Image](tx, imageEntity, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Product{}).Where("image_id = ?", id).Update("image_id", nil).Error; err != nil {
			return fmt.Errorf("unlink products: %w", err)
		}
		return deleteByID[model.Image](tx, imageEntity, id)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// UpdateImageText changes the name and caption of an image. The stored file
// is kept.
func (s *Service) UpdateImageText(ctx context.Context, id uint, name, caption string) (*model.Image, error) {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Image{}).Where("id = ?", id).Updates(map[string]interface{}{"name": name, "caption": caption})
		if res.Error != nil {
			return fmt.Errorf("update image %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(imageEntity, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetImage(ctx, id)
}
