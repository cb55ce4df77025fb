package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const telegramMaxLength = 1024 // Telegram photo caption limit

// TelegramPoster publishes photos to a channel through the Bot API.
// Without a token or channel id it runs in dry-run mode.
type TelegramPoster struct {
	bot       *telego.Bot
	channelID int64
	prefix    string
	dryRun    bool
}

func NewTelegramPoster(cfg *config.Config) *TelegramPoster {
	p := &TelegramPoster{
		channelID: cfg.TelegramChannelID,
		prefix:    cfg.TelegramPrefix,
		dryRun:    cfg.DryRun || cfg.TelegramBotToken == "" || cfg.TelegramChannelID == 0,
	}
	if p.dryRun {
		slog.Info("telegram poster running in dry-run mode")
		return p
	}

	bot, err := telego.NewBot(cfg.TelegramBotToken, telego.WithDefaultLogger(false, false))
	if err != nil {
		slog.Error("failed to create telegram bot, falling back to dry-run", "error", err)
		p.dryRun = true
		return p
	}
	p.bot = bot
	return p
}

func (p *TelegramPoster) Platform() string { return "telegram" }

func (p *TelegramPoster) TextSpec() TextSpec {
	return TextSpec{Prefix: p.prefix, MaxLength: telegramMaxLength}
}

func (p *TelegramPoster) Post(ctx context.Context, asset *models.Asset, text string) (*models.PublishOutcome, error) {
	if p.dryRun {
		slog.Info("[dry-run] would post to telegram channel", "image", asset.Identity(), "text", text)
		return &models.PublishOutcome{Platform: p.Platform(), DryRun: true}, nil
	}

	file, err := os.Open(asset.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	params := &telego.SendPhotoParams{
		ChatID:  tu.ID(p.channelID),
		Photo:   telego.InputFile{File: tu.NameReader(file, asset.Identity())},
		Caption: text,
	}

	msg, err := p.bot.SendPhoto(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("telegram send failed: %w", err)
	}

	return &models.PublishOutcome{
		Platform: p.Platform(),
		PostID:   fmt.Sprintf("%d", msg.MessageID),
	}, nil
}
