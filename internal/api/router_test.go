package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/monitoring"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-06 是週三
var testNow = time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

const catalogJSON = `[
  {"id": 1, "name": "Veggie Omelette", "meal_type": "breakfast", "diet": "vegetarian", "time": 10, "difficulty": "Easy",
   "ingredients": ["3 eggs", "1 cup spinach"], "nutrition": {"calories": 320, "protein": 22, "carbs": 6, "fat": 24}},
  {"id": 2, "name": "Chicken Bowl", "meal_type": "lunch", "diet": "balanced", "time": 25, "difficulty": "Medium",
   "ingredients": ["200g chicken breast", "1 cup rice"], "nutrition": {"calories": 610, "protein": 45, "carbs": 60, "fat": 14}},
  {"id": "3", "name": "Peanut Noodles", "meal_type": "dinner", "diet": "vegetarian", "time": 20, "difficulty": "Easy",
   "ingredients": ["200g noodles", "2 tbsp peanut butter"], "nutrition": {"calories": 540, "protein": 18, "carbs": 70, "fat": 20}}
]`

type testEnv struct {
	router  *gin.Engine
	store   *store.MemoryStore
	metrics *monitoring.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := recipe.ParseCatalog([]byte(catalogJSON))
	require.NoError(t, err)

	st := store.NewMemoryStore()
	svc := planner.NewService(st, catalog,
		planner.WithClock(func() time.Time { return testNow }),
		planner.WithRand(rand.New(rand.NewSource(1))),
	)
	metrics := monitoring.NewMetrics()
	svc.Subscribe(func(e planner.Event) { metrics.PlanEvent(string(e.Type)) })

	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 16},
		RateLimit:   config.RateLimitConfig{Enabled: false},
		DedupWindow: 50 * time.Millisecond,
	}

	return &testEnv{
		router:  SetupRouter(cfg, Dependencies{Store: st, Planner: svc, Metrics: metrics}),
		store:   st,
		metrics: metrics,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, user string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp common.ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 3.0, health["recipes"])

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/live", "", "").Code)

	w = env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mealplanner_http_requests_total")

	w = env.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.ErrCodeNotFound, errorCode(t, w))
}

func TestRecipeRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/recipes?diet=vegetarian&max_time=15", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Recipes []recipe.Recipe `json:"recipes"`
		Total   int             `json:"total"`
	}
	decode(t, w, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Veggie Omelette", list.Recipes[0].Name)

	w = env.do(t, http.MethodGet, "/api/v1/recipes?max_time=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var r recipe.Recipe
	decode(t, w, &r)
	assert.Equal(t, "Peanut Noodles", r.Name)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/99", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RECIPE_NOT_FOUND", errorCode(t, w))
}

func TestRecommendationRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/ingredients", `{"name": "Eggs", "quantity": "6"}`, "alice")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/recommendations", "", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recommendations []recipe.Recommendation `json:"recommendations"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Veggie Omelette", resp.Recommendations[0].Recipe.Name)
	assert.Equal(t, 50, resp.Recommendations[0].Match.Percentage)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/recommendations?ingredients=chicken,rice,noodles&limit=1", "", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Chicken Bowl", resp.Recommendations[0].Recipe.Name)
	assert.Equal(t, 100, resp.Recommendations[0].Match.Percentage)
	assert.Equal(t, []string{"200g chicken breast", "1 cup rice"}, resp.Recommendations[0].Match.MatchedIngredients)
}

func TestIngredientRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/ingredients", `{"name": "  "}`, "bob")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, errorCode(t, w))

	w = env.do(t, http.MethodPost, "/api/v1/ingredients", `{"name": "milk"`, "bob")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/ingredients", `{"name": "milk", "unit": "l"}`, "bob")
	require.Equal(t, http.StatusCreated, w.Code)
	var item store.Ingredient
	decode(t, w, &item)
	assert.NotEmpty(t, item.ID)

	w = env.do(t, http.MethodGet, "/api/v1/ingredients", "", "bob")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"milk"`)

	// 其他分區看不到
	w = env.do(t, http.MethodGet, "/api/v1/ingredients", "", "carol")
	assert.NotContains(t, w.Body.String(), `"milk"`)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/ingredients/"+item.ID, "", "bob").Code)
	w = env.do(t, http.MethodDelete, "/api/v1/ingredients/"+item.ID, "", "bob")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INGREDIENT_NOT_FOUND", errorCode(t, w))
}

func TestPreferenceRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/preferences", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Preferences struct {
			Diet          string   `json:"diet"`
			CalorieTarget int      `json:"calorieTarget"`
			Allergies     []string `json:"allergies"`
		} `json:"preferences"`
		Targets struct {
			Calories int `json:"calories"`
			Protein  int `json:"protein"`
		} `json:"targets"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 2000, resp.Preferences.CalorieTarget)
	assert.Equal(t, 2000, resp.Targets.Calories)

	w = env.do(t, http.MethodPut, "/api/v1/preferences", `{"diet": "Vegan", "calorieTarget": 1800, "allergies": ["Peanut", "peanut"]}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "vegan", resp.Preferences.Diet)
	assert.Equal(t, []string{"peanut"}, resp.Preferences.Allergies)
	assert.Equal(t, 1800, resp.Targets.Calories)

	w = env.do(t, http.MethodPut, "/api/v1/preferences", `{"calorieTarget": -5}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealPlanRoutes(t *testing.T) {
	env := newTestEnv(t)
	const user = "dave"

	// 非週一日期正規化為該週週一
	w := env.do(t, http.MethodGet, "/api/v1/meal-plans/2024-03-07", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	var planResp struct {
		WeekKey string                     `json:"weekKey"`
		Days    []string                   `json:"days"`
		Plan    map[string]json.RawMessage `json:"plan"`
	}
	decode(t, w, &planResp)
	assert.Equal(t, "2024-03-04", planResp.WeekKey)
	assert.Len(t, planResp.Days, 7)
	assert.Empty(t, planResp.Plan)

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/not-a-date", "", user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_WEEK_KEY", errorCode(t, w))

	// 從目錄指定
	w = env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-04/slots/2_lunch", `{"recipeId": 2}`, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"Chicken Bowl"`)

	// 自訂餐點
	w = env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-04/slots/2_dessert", `{"name": "Cake", "calories": "300"}`, user)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-04/slots/9_lunch", `{"name": "x"}`, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SLOT", errorCode(t, w))

	w = env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-04/slots/1_lunch", `{"recipeId": "404"}`, user)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 取消選取後不計入
	w = env.do(t, http.MethodPatch, "/api/v1/meal-plans/2024-03-04/slots/2_dessert", `{"isSelected": false}`, user)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPatch, "/api/v1/meal-plans/2024-03-04/slots/2_dessert", `{}`, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPatch, "/api/v1/meal-plans/2024-03-04/slots/5_dinner", `{"isSelected": true}`, user)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MEAL_NOT_FOUND", errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/2024-03-04/nutrition", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Totals struct {
			Calories float64 `json:"calories"`
		} `json:"totals"`
		MealCount int `json:"mealCount"`
		Days      []struct {
			Totals struct {
				Calories float64 `json:"calories"`
			} `json:"totals"`
		} `json:"days"`
	}
	decode(t, w, &summary)
	assert.Equal(t, 610.0, summary.Totals.Calories)
	require.Len(t, summary.Days, 7)
	assert.Equal(t, 610.0, summary.Days[2].Totals.Calories)

	w = env.do(t, http.MethodGet, "/api/v1/nutrition?date=2024-03-06", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"macroSplit"`)
	w = env.do(t, http.MethodGet, "/api/v1/nutrition?date=06/03/2024", "", user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 移除
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/meal-plans/2024-03-04/slots/2_dessert", "", user).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/meal-plans/2024-03-04/slots/2_dessert", "", user).Code)

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Plans map[string]map[string]json.RawMessage `json:"plans"`
	}
	decode(t, w, &all)
	require.Contains(t, all.Plans, "2024-03-04")
	assert.Contains(t, all.Plans["2024-03-04"], "2_lunch")

	// 清空
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/meal-plans/2024-03-04", "", user).Code)
	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/2024-03-04", "", user)
	decode(t, w, &planResp)
	assert.Empty(t, planResp.Plan)
}

func TestGenerateAndQuickAdd(t *testing.T) {
	env := newTestEnv(t)
	const user = "erin"

	w := env.do(t, http.MethodPost, "/api/v1/meal-plans/2024-03-04/generate", `{"diet": "vegetarian"}`, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var planResp struct {
		Plan map[string]struct {
			RecipeID string `json:"recipeId"`
		} `json:"plan"`
	}
	decode(t, w, &planResp)
	assert.Len(t, planResp.Plan, 28)
	for _, rec := range planResp.Plan {
		assert.NotEqual(t, "2", rec.RecipeID)
	}

	w = env.do(t, http.MethodPost, "/api/v1/meal-plans/2024-03-04/generate?diet=keto", "", user)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/meal-plans/quick-add", `{"recipeId": "2"}`, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quick planner.QuickAddResult
	decode(t, w, &quick)
	assert.Equal(t, "2024-03-04", quick.WeekKey)
	assert.Equal(t, "2_lunch", quick.Slot)
	assert.Equal(t, "Chicken Bowl", quick.Meal.Name)

	w = env.do(t, http.MethodPost, "/api/v1/meal-plans/quick-add", `{}`, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-11", `{"0_breakfast": {"name": "Toast", "calories": 200}, "bogus": {"name": "x"}}`, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var replaced struct {
		Plan map[string]json.RawMessage `json:"plan"`
	}
	decode(t, w, &replaced)
	assert.Len(t, replaced.Plan, 1)
	assert.Contains(t, replaced.Plan, "0_breakfast")
}

func TestUserHeaderValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/ingredients", "", "bad user!")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFoodLogAndProfileRoutes(t *testing.T) {
	env := newTestEnv(t)
	const user = "frank"

	w := env.do(t, http.MethodPost, "/api/v1/nutrition", `{"name": "", "calories": 100}`, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, errorCode(t, w))
	w = env.do(t, http.MethodPost, "/api/v1/nutrition", `{"name": "apple", "calories": -1}`, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/nutrition", `{"name": "apple", "calories": 95, "carbs": 25}`, user)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var apple store.FoodEntry
	decode(t, w, &apple)
	assert.NotEmpty(t, apple.ID)
	assert.False(t, apple.Timestamp.IsZero())

	w = env.do(t, http.MethodPost, "/api/v1/nutrition", `{"name": "latte", "calories": 190, "fat": 7}`, user)
	require.Equal(t, http.StatusCreated, w.Code)

	// 紀錄與計畫統計並列，不計入 totals
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-04/slots/2_lunch", `{"recipeId": 2}`, user).Code)
	w = env.do(t, http.MethodGet, "/api/v1/nutrition?date=2024-03-06", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	var daily struct {
		Totals struct {
			Calories float64 `json:"calories"`
		} `json:"totals"`
		Log []store.FoodEntry `json:"log"`
	}
	decode(t, w, &daily)
	assert.Equal(t, 610.0, daily.Totals.Calories)
	require.Len(t, daily.Log, 2)
	assert.Equal(t, "apple", daily.Log[0].Name)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/ingredients", `{"name": "rice"}`, user).Code)

	// 清空的週不算在統計內
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/meal-plans/2024-03-11/slots/0_breakfast", `{"recipeId": 1}`, user).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/meal-plans/2024-03-11", "", user).Code)

	w = env.do(t, http.MethodGet, "/api/v1/profile", "", user)
	require.Equal(t, http.StatusOK, w.Code)
	var profile planner.Profile
	decode(t, w, &profile)
	assert.Equal(t, user, profile.User)
	assert.Equal(t, planner.Statistics{IngredientCount: 1, MealPlansCount: 1, NutritionEntries: 2}, profile.Statistics)
	assert.Equal(t, 2000, profile.Targets.Calories)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/nutrition/"+apple.ID, "", user).Code)
	w = env.do(t, http.MethodDelete, "/api/v1/nutrition/"+apple.ID, "", user)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "FOOD_ENTRY_NOT_FOUND", errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/v1/profile", "", user)
	decode(t, w, &profile)
	assert.Equal(t, 1, profile.Statistics.NutritionEntries)

	// 其他分區沒有資料
	w = env.do(t, http.MethodGet, "/api/v1/profile", "", "grace")
	var empty planner.Profile
	decode(t, w, &empty)
	assert.Equal(t, planner.Statistics{}, empty.Statistics)
}
