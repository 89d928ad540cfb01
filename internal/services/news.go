package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	NewsFallback = "I couldn't fetch the news. Please try again later."
	newsPrefix   = "Here are the top news headlines: "
)

// NewsClient reads top headlines from NewsAPI for a fixed country.
type NewsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	country    string
	limit      int
	log        logrus.FieldLogger
}

func NewNewsClient(httpClient *http.Client, baseURL, apiKey, country string, limit int, log logrus.FieldLogger) *NewsClient {
	if limit <= 0 {
		limit = 5
	}
	return &NewsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		country:    country,
		limit:      limit,
		log:        log.WithField("service", "news"),
	}
}

type newsArticle struct {
	Title string `json:"title"`
}

type newsResponse struct {
	// pointer so a missing field is told apart from an empty list
	Articles *[]newsArticle `json:"articles"`
}

// Headlines lists up to limit headline titles. It never fails: any error
// yields NewsFallback.
func (c *NewsClient) Headlines(ctx context.Context) string {
	titles, err := c.fetch(ctx)
	if err != nil {
		c.log.WithError(err).Error("fetching news")
		return NewsFallback
	}
	return newsPrefix + strings.Join(titles, "; ")
}

func (c *NewsClient) fetch(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("country", c.country)
	q.Set("apiKey", c.apiKey)
	var resp newsResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/v2/top-headlines?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return nil, errors.New("response has no articles")
	}
	articles := *resp.Articles
	if len(articles) > c.limit {
		articles = articles[:c.limit]
	}
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	return titles, nil
}
