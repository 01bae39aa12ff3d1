// Package handlers 放置各處理器共用的請求解析與錯誤對應
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/store"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fail 將服務層錯誤對應到 API 錯誤碼後回應
func Fail(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, planner.ErrInvalidWeekKey):
		err = common.ErrInvalidWeekKey.Wrap(err)
	case errors.Is(err, planner.ErrInvalidSlot):
		err = common.ErrInvalidSlot.Wrap(err)
	case errors.Is(err, planner.ErrMealNotFound):
		err = common.ErrMealNotFound.Wrap(err)
	case errors.Is(err, planner.ErrRecipeNotFound):
		err = common.ErrRecipeNotFound.Wrap(err)
	case errors.Is(err, planner.ErrNoRecipes):
		err = common.ErrNotFound.WithMessage("沒有符合飲食類型的食譜").Wrap(err)
	case errors.Is(err, store.ErrIngredientNotFound):
		err = common.ErrIngredientNotFound.Wrap(err)
	case errors.Is(err, store.ErrFoodEntryNotFound):
		err = common.ErrFoodEntryNotFound.Wrap(err)
	case errors.As(err, &tooLarge):
		err = common.ErrTooLarge.Wrap(err)
	}

	var ce *common.CustomError
	isClientErr := common.IsValidationError(err) || (errors.As(err, &ce) && ce.Status < http.StatusInternalServerError)
	if !isClientErr {
		common.LogError("請求處理失敗",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	common.RespondError(c, err)
}

// BindJSON 解析請求體，失敗時直接回應 400 並回傳 false
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := common.DecodeJSON(c.Request.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Fail(c, err)
			return false
		}
		Fail(c, common.ErrInvalidRequest.WithMessage("invalid JSON body").Wrap(err))
		return false
	}
	return true
}

// QueryInt 讀取整數查詢參數，未提供時回傳 def
func QueryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.ErrInvalidRequest.WithMessage("invalid " + name + " parameter")
	}
	return n, nil
}
