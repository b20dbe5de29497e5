package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"timesaver/backend/internal/news"
	"timesaver/backend/internal/weather"
)

type WeatherSource interface {
	Current(ctx context.Context, city string) weather.Weather
}

type NewsSource interface {
	Latest(ctx context.Context) []news.Item
}

// WidgetHandler serves the weather and news panels. Upstream failures are
// absorbed by the sources, so these endpoints always answer 200.
type WidgetHandler struct {
	weather WeatherSource
	news    NewsSource
}

func NewWidgetHandler(weatherSource WeatherSource, newsSource NewsSource) *WidgetHandler {
	return &WidgetHandler{weather: weatherSource, news: newsSource}
}

func (h *WidgetHandler) Weather(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"weather": h.weather.Current(c.Request.Context(), c.Query("city"))})
}

func (h *WidgetHandler) News(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"news": h.news.Latest(c.Request.Context())})
}

func (h *WidgetHandler) Widgets(c *gin.Context) {
	city := c.Query("city")
	var (
		current weather.Weather
		items   []news.Item
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		current = h.weather.Current(ctx, city)
		return nil
	})
	g.Go(func() error {
		items = h.news.Latest(ctx)
		return nil
	})
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{"weather": current, "news": items})
}
