package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/Lllllllleong/ocrpdfbot/internal/services"
	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of *tgbotapi.BotAPI the client uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Client implements services.Transport on top of the Telegram Bot API.
type Client struct {
	api  BotAPI
	http *resty.Client
}

// NewClient wraps api. Files are downloaded with a dedicated resty client.
func NewClient(api BotAPI, downloadTimeout time.Duration) *Client {
	return &Client{
		api:  api,
		http: resty.New().SetTimeout(downloadTimeout),
	}
}

// DownloadFile fetches the contents of an uploaded file.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// SendText sends a text message.
func (c *Client) SendText(ctx context.Context, msg services.OutgoingText) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	m.ReplyToMessageID = msg.ReplyToMessageID
	if msg.ForceReply {
		m.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}
	}
	if _, err := c.api.Send(m); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendDocument sends data as a file attachment named fileName.
func (c *Client) SendDocument(ctx context.Context, chatID int64, fileName string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}
