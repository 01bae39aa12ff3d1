package recipe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Catalog 唯讀食譜目錄，建立後不再變動，可安全並行讀取
type Catalog struct {
	recipes []Recipe
	byID    map[ID]int
}

// NewCatalog 建立目錄，重複 ID 以第一筆為準
func NewCatalog(recipes []Recipe) *Catalog {
	c := &Catalog{
		recipes: make([]Recipe, len(recipes)),
		byID:    make(map[ID]int, len(recipes)),
	}
	copy(c.recipes, recipes)
	for i, r := range c.recipes {
		if _, exists := c.byID[r.ID]; !exists {
			c.byID[r.ID] = i
		}
	}
	return c
}

// ParseCatalog 解析目錄 JSON（食譜陣列）
func ParseCatalog(data []byte) (*Catalog, error) {
	var recipes []Recipe
	if err := common.DecodeJSON(bytes.NewReader(data), &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}
	return NewCatalog(recipes), nil
}

// LoadCatalogFile 從本機檔案載入目錄
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// LoadCatalogURL 從遠端載入目錄
func LoadCatalogURL(ctx context.Context, url string, timeout time.Duration) (*Catalog, error) {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	start := time.Now()
	resp, err := client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe catalog: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("recipe catalog returned status %d", resp.StatusCode())
	}

	common.LogInfo("已下載食譜目錄",
		zap.String("url", url),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("耗時", time.Since(start)),
	)
	return ParseCatalog(resp.Body())
}

// LoadCatalog 設定 url 時優先從遠端載入，失敗則改用本機檔案
func LoadCatalog(ctx context.Context, path, url string, timeout time.Duration) (*Catalog, error) {
	if url != "" {
		c, err := LoadCatalogURL(ctx, url, timeout)
		if err == nil {
			return c, nil
		}
		if path == "" {
			return nil, err
		}
		common.LogWarn("遠端食譜目錄載入失敗，改用本機檔案", zap.Error(err), zap.String("path", path))
	}
	return LoadCatalogFile(path)
}

// Len 食譜數量
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// All 回傳所有食譜的副本
func (c *Catalog) All() []Recipe {
	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// List 回傳符合篩選條件的食譜
func (c *Catalog) List(f Filter) []Recipe {
	return f.Apply(c.recipes)
}

// Get 依 ID 取得食譜
func (c *Catalog) Get(id string) (Recipe, bool) {
	i, ok := c.byID[ID(id)]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i], true
}
