package app

import (
	"gorm.io/gorm"

	feedrepos "github.com/stunity/feed-service/internal/data/repos/feed"
	"github.com/stunity/feed-service/internal/platform/logger"
)

type Repos struct {
	Posts   feedrepos.PostRepo
	Signals feedrepos.SignalRepo
	Scores  feedrepos.ScoreRepo
	Social  feedrepos.SocialRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Posts:   feedrepos.NewPostRepo(db, log),
		Signals: feedrepos.NewSignalRepo(db, log),
		Scores:  feedrepos.NewScoreRepo(db, log),
		Social:  feedrepos.NewSocialRepo(db, log),
	}
}
