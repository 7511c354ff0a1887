package page

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/orgball2608/fb-repost-bot/internal/cache"
	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/orgball2608/fb-repost-bot/internal/facebook"
	"github.com/orgball2608/fb-repost-bot/pkg/logger"
	"github.com/orgball2608/fb-repost-bot/pkg/paths"
)

// DescriptorStore loads page descriptors from <data>/pages/<id>/page.json,
// creating them from the Graph API on first use.
type DescriptorStore struct {
	paths           *paths.Paths
	client          facebook.Client
	defaultInterval time.Duration
	logger          logger.Logger
}

func NewDescriptorStore(p *paths.Paths, client facebook.Client, defaultInterval time.Duration, log logger.Logger) *DescriptorStore {
	return &DescriptorStore{
		paths:           p,
		client:          client,
		defaultInterval: defaultInterval,
		logger:          log.WithComponent("DescriptorStore"),
	}
}

func (s *DescriptorStore) LoadOrCreate(ctx context.Context, pageID int64, token facebook.Token) (domain.Page, error) {
	page, err := s.load(pageID)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return domain.Page{}, err
	}

	s.logger.Info("Page descriptor not found, fetching page from Graph API", "page_id", pageID)
	name, err := s.client.FetchPageName(ctx, pageID, token)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch name of page %d: %w", pageID, err)
	}

	page = domain.Page{
		ID:            pageID,
		Username:      name,
		CheckInterval: int64(s.defaultInterval / time.Second),
	}
	if err := s.save(page); err != nil {
		return domain.Page{}, err
	}

	s.logger.Info("Page descriptor created", "page_id", pageID, "page", name, "check_interval", page.CheckInterval)
	return page, nil
}

func (s *DescriptorStore) load(pageID int64) (domain.Page, error) {
	path := s.paths.PageFile(pageID)
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Page{}, err
	}

	var page domain.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return domain.Page{}, fmt.Errorf("parse page descriptor %s: %w", path, err)
	}
	if page.ID != pageID {
		return domain.Page{}, fmt.Errorf("page descriptor %s has id %d, expected %d", path, page.ID, pageID)
	}
	if page.CheckInterval <= 0 {
		page.CheckInterval = int64(s.defaultInterval / time.Second)
	}
	return page, nil
}

func (s *DescriptorStore) save(page domain.Page) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal page descriptor %d: %w", page.ID, err)
	}
	if err := cache.WriteFileAtomic(s.paths.PageFile(page.ID), data); err != nil {
		return fmt.Errorf("write page descriptor %d: %w", page.ID, err)
	}
	return nil
}
