package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beelyapp/beely/internal/auth"
	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/models"
	"gorm.io/gorm"
)

var DefaultCategories = []catalog.Category{
	{Name: "Motivasyon", Slug: "motivasyon", Icon: "Zap", Description: "İçindeki gücü ortaya çıkar. Harekete geçmek için ihtiyacın olan kıvılcım."},
	{Name: "Rahatlama", Slug: "rahatlama", Icon: "Heart", Description: "Kaslarını gevşetip zihnini ve bedenini dinlendirecek içerikler."},
	{Name: "Eğlence", Slug: "eglence", Icon: "Laugh", Description: "Gülmek en iyi ilaçtır. Keyfini yerine getirecek en eğlenceli anlar."},
	{Name: "Uyku", Slug: "uyku", Icon: "Moon", Description: "Derin ve huzurlu bir uykuya dalmanı kolaylaştıracak içerikler."},
	{Name: "Odaklanma", Slug: "odaklanma", Icon: "Target", Description: "Dikkatin dağılmadan çalışmanı ve üretmeni sağlayacak flow ortamı."},
	{Name: "Meditasyon", Slug: "meditasyon", Icon: "Sparkles", Description: "İç huzuru bul. Nefes al ve anın tadını çıkar."},
	{Name: "Doğa", Slug: "doga", Icon: "Leaf", Description: "Doğanın dinlendirici sesleri ve manzaraları."},
	{Name: "Müzik", Slug: "muzik", Icon: "Music", Description: "Ruhunu besleyecek melodiler ve ritimler."},
	{Name: "Spor", Slug: "spor", Icon: "Dumbbell", Description: "Enerjini yükselt, formda kal."},
	{Name: "Öğrenme", Slug: "ogrenme", Icon: "BookOpen", Description: "Yeni şeyler öğren, kendini geliştir."},
	{Name: "İlham", Slug: "ilham", Icon: "Lightbulb", Description: "Yaratıcılığını tetikleyecek fikirler ve hikayeler."},
	{Name: "Stres Yönetimi", Slug: "stres", Icon: "Wind", Description: "Stresi azalt, sakinleş ve kendine gel."},
}

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	VideoBaseURL  string
	VideosPerSlug int
}

type SeedReport struct {
	Categories int
	Videos     int
	Admin      bool
}

// Seed inserts the default categories, an admin account and demo videos.
// Rows that already exist are left alone, so it can run on every deploy.
func Seed(ctx context.Context, gdb *gorm.DB, opts SeedOptions) (*SeedReport, error) {
	rep := &SeedReport{}
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range DefaultCategories {
			cat := c
			err := tx.Where("slug = ?", c.Slug).First(&cat).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&cat).Error; err != nil {
					return fmt.Errorf("seed category %s: %w", c.Slug, err)
				}
				rep.Categories++
			case err != nil:
				return err
			}

			n, err := seedVideos(tx, cat, opts)
			if err != nil {
				return err
			}
			rep.Videos += n
		}

		created, err := seedAdmin(tx, opts)
		rep.Admin = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func seedVideos(tx *gorm.DB, cat catalog.Category, opts SeedOptions) (int, error) {
	if opts.VideosPerSlug <= 0 || opts.VideoBaseURL == "" {
		return 0, nil
	}
	var existing int64
	if err := tx.Model(&feed.Video{}).Where("category_id = ?", cat.ID).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}
	base := strings.TrimRight(opts.VideoBaseURL, "/")
	videos := make([]feed.Video, 0, opts.VideosPerSlug)
	for i := 1; i <= opts.VideosPerSlug; i++ {
		videos = append(videos, feed.Video{
			CategoryID: cat.ID,
			VideoURL:   fmt.Sprintf("%s/%s/%s_%d.mp4", base, cat.Slug, cat.Slug, i),
			IsActive:   true,
		})
	}
	if err := tx.Create(&videos).Error; err != nil {
		return 0, fmt.Errorf("seed videos %s: %w", cat.Slug, err)
	}
	return len(videos), nil
}

func seedAdmin(tx *gorm.DB, opts SeedOptions) (bool, error) {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return false, nil
	}
	var u models.User
	err := tx.Where("email = ?", opts.AdminEmail).First(&u).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return false, err
	}
	now := time.Now()
	u = models.User{
		Name:            "Admin",
		Email:           opts.AdminEmail,
		PasswordHash:    hash,
		Role:            models.RoleAdmin,
		EmailVerifiedAt: &now,
	}
	if err := tx.Create(&u).Error; err != nil {
		return false, err
	}
	return true, nil
}
